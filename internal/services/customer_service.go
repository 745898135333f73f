package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/text/language"

	domain "github.com/maplecart/api/internal/domain"
	"github.com/maplecart/api/internal/repositories"
)

var (
	// ErrCustomerInvalidInput indicates the caller supplied invalid customer data.
	ErrCustomerInvalidInput = errors.New("customer service: invalid input")
)

// CustomerServiceDeps bundles constructor inputs for the customer service.
type CustomerServiceDeps struct {
	Customers   repositories.CustomerRepository
	Clock       func() time.Time
	IDGenerator func() string
}

type customerService struct {
	customers repositories.CustomerRepository
	clock     func() time.Time
	newID     func() string
}

// NewCustomerService constructs the customer service.
func NewCustomerService(deps CustomerServiceDeps) (CustomerService, error) {
	if deps.Customers == nil {
		return nil, errors.New("customer service: customer repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	return &customerService{
		customers: deps.Customers,
		clock:     func() time.Time { return clock().UTC() },
		newID:     idGen,
	}, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID string) (domain.Customer, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return domain.Customer{}, fmt.Errorf("%w: customer id is required", ErrCustomerInvalidInput)
	}
	return s.customers.FindByID(ctx, customerID)
}

// UpsertCustomer creates a profile keyed by email or updates the existing one.
// Profiles are created lazily at first checkout, so the email is the natural
// identity here, not the document id.
func (s *customerService) UpsertCustomer(ctx context.Context, cmd UpsertCustomerCommand) (domain.Customer, error) {
	customer, err := s.normalizeCustomer(cmd.Customer)
	if err != nil {
		return domain.Customer{}, err
	}

	existing, err := s.customers.FindByEmail(ctx, customer.Email)
	switch {
	case err == nil:
		customer.ID = existing.ID
		customer.CreatedAt = existing.CreatedAt
		customer.UpdatedAt = s.clock()
		if len(customer.Addresses) == 0 {
			customer.Addresses = existing.Addresses
		}
		if err := s.customers.Update(ctx, customer); err != nil {
			return domain.Customer{}, err
		}
		return customer, nil
	case isRepoNotFound(err):
		now := s.clock()
		customer.ID = s.newID()
		customer.CreatedAt = now
		customer.UpdatedAt = now
		if err := s.customers.Insert(ctx, customer); err != nil {
			return domain.Customer{}, err
		}
		return customer, nil
	default:
		return domain.Customer{}, err
	}
}

func (s *customerService) ListCustomers(ctx context.Context, pager domain.Pagination) (domain.CursorPage[domain.Customer], error) {
	return s.customers.List(ctx, pager)
}

func (s *customerService) normalizeCustomer(customer domain.Customer) (domain.Customer, error) {
	customer.Email = strings.ToLower(strings.TrimSpace(customer.Email))
	customer.Name = strings.TrimSpace(customer.Name)

	if customer.Email == "" {
		return domain.Customer{}, fmt.Errorf("%w: email is required", ErrCustomerInvalidInput)
	}
	if _, err := mail.ParseAddress(customer.Email); err != nil {
		return domain.Customer{}, fmt.Errorf("%w: malformed email %q", ErrCustomerInvalidInput, customer.Email)
	}

	customer.Locale = normalizeLocale(customer.Locale)
	return customer, nil
}

// normalizeLocale canonicalizes BCP 47 tags ("EN_us" -> "en-US") and falls
// back to "en" for anything unparseable.
func normalizeLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return "en"
	}
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return "en"
	}
	return tag.String()
}
