package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/gin-pizza-orders/internal/models"
	"gorm.io/gorm"
)

// ErrCustomerNotFound is returned when no customer matches the lookup
var ErrCustomerNotFound = errors.New("customer not found")

// CustomerService is the customer directory
type CustomerService interface {
	// GetCustomerByEmail returns the oldest customer registered with the email
	GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error)
	// GetCustomerByID retrieves a customer by its ID
	GetCustomerByID(ctx context.Context, id uint) (*models.Customer, error)
	// UpsertByEmail updates name and phone of the customer with the given email,
	// or creates one. The boolean reports whether a new customer was created.
	UpsertByEmail(ctx context.Context, name, email, phone string) (*models.Customer, bool, error)
}

type customerService struct {
	db *gorm.DB
}

// NewCustomerService creates a CustomerService backed by db. Passing a transaction
// handle scopes every call to that transaction.
func NewCustomerService(db *gorm.DB) CustomerService {
	return &customerService{db: db}
}

func (s *customerService) GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).Where("email = ?", email).Order("id").First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("find customer by email: %w", err)
	}
	return &customer, nil
}

func (s *customerService) GetCustomerByID(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("find customer %d: %w", id, err)
	}
	return &customer, nil
}

// UpsertByEmail reads then writes without locking. Two first orders racing on the
// same new email can both miss the read and insert two customers.
func (s *customerService) UpsertByEmail(ctx context.Context, name, email, phone string) (*models.Customer, bool, error) {
	existing, err := s.GetCustomerByEmail(ctx, email)
	switch {
	case err == nil:
		existing.Name = name
		existing.Phone = phone
		if err := s.db.WithContext(ctx).Save(existing).Error; err != nil {
			return nil, false, fmt.Errorf("update customer %d: %w", existing.ID, err)
		}
		return existing, false, nil
	case errors.Is(err, ErrCustomerNotFound):
		customer := &models.Customer{Name: name, Email: email, Phone: phone}
		if err := s.db.WithContext(ctx).Create(customer).Error; err != nil {
			return nil, false, fmt.Errorf("create customer: %w", err)
		}
		return customer, true, nil
	default:
		return nil, false, err
	}
}
