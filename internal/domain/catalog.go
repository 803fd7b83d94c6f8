package domain

// Product represents a sellable item in the catalog. Admin-only attributes
// (stock, active) are optional pointers so one entity shape serves both the
// storefront and the back-office views.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	Description string   `json:"description"`
	Details     []string `json:"details"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	Featured    bool     `json:"featured"`
	IsNew       bool     `json:"is_new"`
	Likes       int      `json:"likes"`
	Liked       bool     `json:"liked"`

	Stock  *int  `json:"stock,omitempty"`
	Active *bool `json:"active,omitempty"`
}

// Category is immutable catalog metadata. Products reference it through
// their Category attribute, which must equal the category ID exactly.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// CartItem is a product snapshot plus the session-chosen options. Two cart
// lines may carry the same product; lines are never merged.
type CartItem struct {
	Product       Product `json:"product"`
	SelectedSize  string  `json:"selected_size"`
	SelectedColor string  `json:"selected_color"`
	Quantity      int     `json:"quantity"`
}

// Comment is attached to a product for the lifetime of one session. The
// Date field carries a calendar date only, formatted as CommentDateLayout.
type Comment struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Text      string `json:"text"`
	Date      string `json:"date"`
}

// CommentDateLayout is the calendar-date format used for Comment.Date.
const CommentDateLayout = "2006-01-02"
