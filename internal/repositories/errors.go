package repositories

import (
	"errors"

	"github.com/mdobak/go-xerrors"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = xerrors.Message("record not found")
	ErrDuplicate = xerrors.Message("record already exists")
)

// translate maps gorm errors onto the repository sentinels and attaches a
// stack trace to everything else.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return xerrors.New(ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return xerrors.New(ErrDuplicate)
	default:
		return xerrors.New(err)
	}
}
