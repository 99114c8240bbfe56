package staff

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tipjar/internal/apperr"
	"tipjar/internal/config"
	"tipjar/internal/model"
)

// Directory is the read-only list of staff members that can receive tips.
type Directory struct {
	members []model.StaffMember
	byName  map[string]model.StaffMember
	invalid map[string]string
}

// New validates entries and keeps the usable ones in configuration order.
// Rejected entries are logged and never abort loading.
func New(entries []config.StaffEntry, logger *zap.Logger) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Directory{
		members: make([]model.StaffMember, 0, len(entries)),
		byName:  make(map[string]model.StaffMember, len(entries)),
		invalid: make(map[string]string),
	}

	for i, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		address := strings.TrimSpace(entry.Address)

		switch {
		case name == "":
			logger.Warn("staff entry skipped: missing name", zap.Int("position", i), zap.String("address", address))
			continue
		case !common.IsHexAddress(address):
			logger.Warn("staff entry skipped: malformed address", zap.String("name", name), zap.String("address", address))
			if _, ok := d.byName[name]; !ok {
				d.invalid[name] = address
			}
			continue
		}
		if _, ok := d.byName[name]; ok {
			logger.Warn("staff entry skipped: duplicate name", zap.String("name", name), zap.String("address", address))
			continue
		}

		member := model.StaffMember{Name: name, Address: common.HexToAddress(address)}
		d.members = append(d.members, member)
		d.byName[name] = member
		delete(d.invalid, name)
	}

	return d
}

// List returns the selectable staff members in configuration order.
func (d *Directory) List() []model.StaffMember {
	out := make([]model.StaffMember, len(d.members))
	copy(out, d.members)
	return out
}

// Lookup resolves a staff member by display name.
func (d *Directory) Lookup(name string) (model.StaffMember, error) {
	name = strings.TrimSpace(name)
	if member, ok := d.byName[name]; ok {
		return member, nil
	}
	if address, ok := d.invalid[name]; ok {
		return model.StaffMember{}, apperr.Configuration("staff member %q has an invalid address %q", name, address)
	}
	return model.StaffMember{}, apperr.Validation("unknown staff member %q", name)
}
