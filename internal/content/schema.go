package content

// Kind is the column type of a content field, driving input parsing.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindDate      // DATE, "2006-01-02"
	KindTimestamp // TIMESTAMPTZ
)

type Field struct {
	Name     string
	Kind     Kind
	Required bool
}

// Schema describes one content resource: its route name, table and editable columns.
// id and created_at are managed by the database and never accepted from input.
type Schema struct {
	Resource  string
	Table     string
	Fields    []Field
	FileField string
}

// Columns returns every writable column, the file field last.
func (s Schema) Columns() []string {
	columns := make([]string, 0, len(s.Fields)+1)
	for _, f := range s.Fields {
		columns = append(columns, f.Name)
	}
	if s.FileField != "" {
		columns = append(columns, s.FileField)
	}
	return columns
}

func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	if s.FileField != "" && name == s.FileField {
		return Field{Name: s.FileField, Kind: KindText}, true
	}
	return Field{}, false
}

func text(name string) Field         { return Field{Name: name, Kind: KindText} }
func requiredText(name string) Field { return Field{Name: name, Kind: KindText, Required: true} }
func integer(name string) Field      { return Field{Name: name, Kind: KindInt} }
func date(name string) Field         { return Field{Name: name, Kind: KindDate} }

// Schemas lists all content resources served under /api/admin/<resource>.
var Schemas = []Schema{
	{
		Resource:  "about",
		Table:     "about",
		Fields:    []Field{requiredText("title"), requiredText("content"), text("mission"), text("vision")},
		FileField: "image_url",
	},
	{
		Resource:  "achievements",
		Table:     "achievements",
		Fields:    []Field{requiredText("title"), text("description"), integer("year"), text("category")},
		FileField: "image_url",
	},
	{
		Resource: "coaches",
		Table:    "coaches",
		Fields: []Field{
			requiredText("name"), requiredText("role"), text("bio"), text("license"), integer("years_experience"),
		},
		FileField: "image_url",
	},
	{
		Resource: "players",
		Table:    "players",
		Fields: []Field{
			requiredText("name"), requiredText("position"), integer("birth_year"), integer("jersey_number"),
			text("age_group"), text("bio"),
		},
		FileField: "image_url",
	},
	{
		Resource: "matches",
		Table:    "matches",
		Fields: []Field{
			requiredText("home_team"), requiredText("away_team"),
			{Name: "match_date", Kind: KindTimestamp, Required: true},
			text("location"), text("competition"), integer("home_score"), integer("away_score"), text("status"),
		},
		FileField: "image_url",
	},
	{
		Resource: "news",
		Table:    "news",
		Fields: []Field{
			requiredText("title"), requiredText("content"), text("summary"),
			{Name: "published_at", Kind: KindTimestamp}, text("author"),
		},
		FileField: "image_url",
	},
	{
		Resource:  "testimonials",
		Table:     "testimonials",
		Fields:    []Field{requiredText("author"), requiredText("content"), text("role"), integer("rating")},
		FileField: "image_url",
	},
	{
		Resource:  "partners",
		Table:     "partners",
		Fields:    []Field{requiredText("name"), text("website_url"), text("description")},
		FileField: "logo_url",
	},
	{
		Resource: "tournaments",
		Table:    "tournaments",
		Fields: []Field{
			requiredText("name"), text("location"), date("start_date"), date("end_date"),
			text("description"), text("result"),
		},
		FileField: "image_url",
	},
}

func SchemaFor(resource string) (Schema, bool) {
	for _, s := range Schemas {
		if s.Resource == resource {
			return s, true
		}
	}
	return Schema{}, false
}
