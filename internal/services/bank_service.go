package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/cashora/backend/internal/audit"
	"github.com/cashora/backend/internal/logging"
	"github.com/cashora/backend/internal/models"
	"github.com/cashora/backend/internal/store"
	"go.uber.org/zap"
)

// AddBankRequest is the payload for creating a bank
// @Description Add bank request structure
type AddBankRequest struct {
	Name string `json:"name" validate:"required,max=100" example:"Bank D"`
}

type BankService struct {
	store *store.MemoryStore
	audit *audit.Logger
	log   *logging.Logger
}

func NewBankService(st *store.MemoryStore, auditLog *audit.Logger) *BankService {
	return &BankService{store: st, audit: auditLog, log: logging.L().Named("banks")}
}

// List returns every bank with its assigned-user count.
func (bs *BankService) List() []models.Bank {
	return bs.store.ListBanks()
}

func (bs *BankService) Add(ctx context.Context, actorID int, name string) (models.Bank, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Bank{}, models.ErrBankNameRequired
	}

	b, err := bs.store.CreateBank(name)
	if err != nil {
		return models.Bank{}, err
	}

	bs.log.Info("bank added", zap.Int("bank_id", b.ID), zap.String("name", b.Name))
	bs.audit.LogOperation(fmt.Sprintf("bank:%d", b.ID), actorID, "BANK_ADD", b.Name)
	return b, nil
}

// Delete removes the bank and unassigns it from all users.
func (bs *BankService) Delete(ctx context.Context, actorID, id int) error {
	if err := bs.store.DeleteBank(id); err != nil {
		return err
	}

	bs.log.Info("bank deleted", zap.Int("bank_id", id))
	bs.audit.LogOperation(fmt.Sprintf("bank:%d", id), actorID, "BANK_DELETE", "")
	return nil
}
