package feed

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	fterrors "github.com/matzehuels/transitcal/pkg/errors"
)

// viewFile is the on-disk form of a View:
//
//	[[filters]]
//	table = "routes.txt"
//	columns = { route_id = ["A", "B"] }
//
// or in YAML:
//
//	filters:
//	  - table: routes.txt
//	    columns:
//	      route_id: [A, B]
type viewFile struct {
	Filters []viewEntry `toml:"filters" yaml:"filters" validate:"required,min=1,dive"`
}

type viewEntry struct {
	Table   string              `toml:"table" yaml:"table" validate:"required,endswith=.txt"`
	Columns map[string][]string `toml:"columns" yaml:"columns" validate:"required,min=1,dive,keys,required,endkeys,min=1,dive,required"`
}

// LoadViewFile reads an ordered filter list from a .toml, .yaml or .yml file.
func LoadViewFile(path string) (View, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fterrors.New(fterrors.ErrCodeFileNotFound, "view file not found: %s", path)
		}
		return nil, fterrors.Wrap(fterrors.ErrCodeInvalidView, err, "read view file")
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		return ParseView(data, "toml")
	case ".yaml", ".yml":
		return ParseView(data, "yaml")
	default:
		return nil, fterrors.New(fterrors.ErrCodeInvalidView, "unsupported view file extension %q (want .toml, .yaml or .yml)", ext)
	}
}

// ParseView decodes and validates a view document in the given format
// ("toml" or "yaml").
func ParseView(data []byte, format string) (View, error) {
	var vf viewFile
	var err error
	switch format {
	case "toml":
		err = toml.Unmarshal(data, &vf)
	case "yaml":
		err = yaml.Unmarshal(data, &vf)
	default:
		return nil, fterrors.New(fterrors.ErrCodeInvalidView, "unsupported view format %q", format)
	}
	if err != nil {
		return nil, fterrors.Wrap(fterrors.ErrCodeInvalidView, err, "decode %s view", format)
	}

	if err := validator.New().Struct(vf); err != nil {
		return nil, fterrors.Wrap(fterrors.ErrCodeInvalidView, err, "invalid view")
	}

	view := make(View, 0, len(vf.Filters))
	for _, e := range vf.Filters {
		if err := fterrors.ValidateTableName(e.Table); err != nil {
			return nil, err
		}
		view = append(view, TableFilter{Table: e.Table, Filter: ColumnFilter(e.Columns)})
	}
	return view, nil
}
