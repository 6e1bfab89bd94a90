package domain

// FieldType is the input kind a registration form field renders as.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldNumber   FieldType = "number"
	FieldSelect   FieldType = "select"
	FieldTextarea FieldType = "textarea"
)

// Field describes one input of the registration form. Name is the formData key a submission uses.
type Field struct {
	ID       string
	Name     string
	Label    string
	Type     FieldType
	Options  []string // select fields only
	Required bool
	Order    int
	Active   bool
}

// DefaultFields is the registration form a fresh deployment starts with.
func DefaultFields() []*Field {
	return []*Field{
		{ID: "name", Name: "name", Label: "Full Name", Type: FieldText, Required: true, Order: 1, Active: true},
		{ID: "email", Name: "email", Label: "Email Address", Type: FieldEmail, Required: true, Order: 2, Active: true},
		{
			ID:       "skillLevel",
			Name:     "skillLevel",
			Label:    "Skill Level",
			Type:     FieldSelect,
			Options:  []string{"Beginner", "Intermediate", "Advanced", "Expert"},
			Required: true,
			Order:    3,
			Active:   true,
		},
		{ID: "interests", Name: "interests", Label: "Areas of Interest", Type: FieldTextarea, Order: 4, Active: true},
	}
}
