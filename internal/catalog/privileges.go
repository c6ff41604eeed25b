package catalog

import (
	"context"
	"slices"

	"github.com/eugenenazirov/propbind/internal/binding"
	"github.com/eugenenazirov/propbind/internal/configuration"
)

type privilegeConfig struct {
	Names []string `config:"names" default:"READ,COMMENT,EDIT,PUBLISH,ADMIN"`
}

func (p *privilegeConfig) ConfigValidators() []binding.Validator {
	return []binding.Validator{
		binding.Check("namesNotBlank", "privilege names must not be blank", func() bool {
			return !slices.Contains(p.Names, "")
		}),
	}
}

// Privileges is a fixed privilege list.
type Privileges struct {
	names []string
}

// LoadPrivileges binds privileges.names from cfg.
func LoadPrivileges(cfg *configuration.Configuration) (*Privileges, error) {
	var pc privilegeConfig
	if err := cfg.Bind(&pc, PrivilegePrefix); err != nil {
		return nil, err
	}
	return &Privileges{names: pc.Names}, nil
}

// AllPrivileges returns the configured privilege names.
func (p *Privileges) AllPrivileges(context.Context) ([]string, error) {
	return slices.Clone(p.names), nil
}
