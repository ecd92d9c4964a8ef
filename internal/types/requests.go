package types

// IngredientAmount references an existing ingredient and the quantity used.
type IngredientAmount struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeRequest is the body of POST /recipes/ and PATCH /recipes/{id}/.
// Pointer fields distinguish "absent" from zero values so PATCH can keep
// stored values; tags and ingredients are nil when absent.
type RecipeRequest struct {
	Name        *string            `json:"name"`
	Text        *string            `json:"text"`
	CookingTime *int               `json:"cooking_time"`
	Image       *string            `json:"image"`
	Tags        []uint             `json:"tags"`
	Ingredients []IngredientAmount `json:"ingredients"`
}

// RegisterRequest is the body of POST /users/.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the body of POST /auth/token/login/.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SetPasswordRequest is the body of POST /users/set_password/.
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

// AvatarRequest carries a base64 encoded image.
type AvatarRequest struct {
	Avatar string `json:"avatar" binding:"required"`
}

// RecipeFilter narrows recipe listings. Favorited and InShoppingCart only
// apply to authenticated callers.
type RecipeFilter struct {
	AuthorID       *uint
	Tags           []string
	Favorited      bool
	InShoppingCart bool
}

// Pagination selects one page of a listing; Page is 1-based.
type Pagination struct {
	Page  int
	Limit int
}

// Offset returns the row offset of the page.
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}
