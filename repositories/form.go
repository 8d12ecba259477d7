package repositories

import (
	"log/slog"
	"room-engine/domain"
	"room-engine/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

const formPrefix = "form:"

type IFormRepository interface {
	SaveForm(form domain.Form) error
	GetForm(id string) (domain.Form, error)
}

// FormRepository stores the authored quiz and survey content rooms are opened from.
type FormRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewFormRepository(db *badger.DB, log *slog.Logger) FormRepository {
	return FormRepository{db: db, log: log}
}

func (f FormRepository) SaveForm(form domain.Form) error {
	items := make([]any, len(form.Items))
	for i, item := range form.Items {
		items[i] = fromItem(item)
	}
	data, err := encode(record{
		"id":       form.ID,
		"kind":     string(form.Kind),
		"title":    form.Title,
		"owner_id": form.OwnerID,
		"items":    items,
	})
	if err != nil {
		return err
	}
	err = f.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(formPrefix+form.ID), data)
	})
	return persistenceErr(err)
}

func (f FormRepository) GetForm(id string) (domain.Form, error) {
	var form domain.Form
	err := f.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(formPrefix + id))
		if err == badger.ErrKeyNotFound {
			return errors.ErrFormNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			rec, err := decode(val)
			if err != nil {
				return err
			}
			form = domain.Form{
				ID:      rec.str("id"),
				Kind:    domain.RoomKind(rec.str("kind")),
				Title:   rec.str("title"),
				OwnerID: rec.str("owner_id"),
				Items:   lo.Map(rec.list("items"), func(r record, _ int) domain.Item { return toItem(r) }),
			}
			return nil
		})
	})
	return form, persistenceErr(err)
}
