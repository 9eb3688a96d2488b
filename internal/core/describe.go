package core

// Catalog documents the registered formats and the checks they run. It backs
// GET /api/formats and "beadinspect formats".
type Catalog struct {
	Formats    []FormatDoc    `json:"formats" yaml:"formats"`
	Validators []ValidatorDoc `json:"validators" yaml:"validators"`
}

// FormatDoc describes one registered format.
type FormatDoc struct {
	Name         string           `json:"name" yaml:"name"`
	Label        string           `json:"label" yaml:"label"`
	FileName     string           `json:"file_name" yaml:"file_name"`
	IDColumn     string           `json:"id_column" yaml:"id_column"`
	Headerless   bool             `json:"headerless,omitempty" yaml:"headerless,omitempty"`
	Columns      []ColumnDoc      `json:"columns" yaml:"columns"`
	ColumnChecks []ColumnCheckDoc `json:"column_checks" yaml:"column_checks"`
	RowChecks    []RowCheckDoc    `json:"row_checks" yaml:"row_checks"`
}

// ColumnDoc describes one expected column.
type ColumnDoc struct {
	Name     string `json:"name" yaml:"name"`
	DType    string `json:"dtype" yaml:"dtype"`
	Nullable bool   `json:"nullable" yaml:"nullable"`
}

// ColumnCheckDoc binds a validator name to a column.
type ColumnCheckDoc struct {
	Column    string `json:"column" yaml:"column"`
	Validator string `json:"validator" yaml:"validator"`
	Level     Level  `json:"level" yaml:"level"`
}

// RowCheckDoc describes a row rule applied to a format.
type RowCheckDoc struct {
	Name       string   `json:"name" yaml:"name"`
	Level      Level    `json:"level" yaml:"level"`
	ShortDescr string   `json:"short_descr" yaml:"short_descr"`
	RuleDescr  string   `json:"rule_descr" yaml:"rule_descr"`
	Columns    []string `json:"columns" yaml:"columns"`
}

// ValidatorDoc describes one catalog validator.
type ValidatorDoc struct {
	Name        string   `json:"name" yaml:"name"`
	RuleDescr   string   `json:"rule_descr" yaml:"rule_descr"`
	ValidValues []string `json:"valid_values" yaml:"valid_values"`
}

// DescribeCatalog documents every registered format and the validators they
// use, in expected-format order and validator name order.
func DescribeCatalog() Catalog {
	defs := All()
	used := make(map[string]bool)

	cat := Catalog{
		Formats:    make([]FormatDoc, 0, len(defs)),
		Validators: make([]ValidatorDoc, 0),
	}
	for _, def := range defs {
		doc := FormatDoc{
			Name:         def.Name,
			Label:        def.Label,
			FileName:     def.FileName(),
			IDColumn:     def.IDColumn,
			Headerless:   def.Header != nil,
			Columns:      make([]ColumnDoc, len(def.Columns)),
			ColumnChecks: make([]ColumnCheckDoc, len(def.ColumnChecks)),
			RowChecks:    make([]RowCheckDoc, len(def.RowChecks)),
		}
		for i, c := range def.Columns {
			doc.Columns[i] = ColumnDoc{Name: c.Name, DType: c.Type.String(), Nullable: def.IsNullable(c.Name)}
		}
		for i, c := range def.ColumnChecks {
			doc.ColumnChecks[i] = ColumnCheckDoc{Column: c.Column, Validator: c.Validator.Name, Level: c.Level}
			used[c.Validator.Name] = true
		}
		for i, c := range def.RowChecks {
			cols := make([]string, len(c.Rule.Columns))
			for j, ref := range c.Rule.Columns {
				cols[j] = ref.Name
			}
			doc.RowChecks[i] = RowCheckDoc{
				Name:       c.Rule.Name,
				Level:      c.Level,
				ShortDescr: c.Rule.ShortDescr,
				RuleDescr:  c.Rule.RuleDescr,
				Columns:    cols,
			}
		}
		cat.Formats = append(cat.Formats, doc)
	}

	for _, v := range AllValidators() {
		if !used[v.Name] {
			continue
		}
		cat.Validators = append(cat.Validators, ValidatorDoc{
			Name:        v.Name,
			RuleDescr:   v.RuleDescr(),
			ValidValues: v.ValidValues,
		})
	}
	return cat
}
