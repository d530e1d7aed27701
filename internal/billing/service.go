package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aurumworks/jewelpos-backend/pkg/db/models"
	"github.com/aurumworks/jewelpos-backend/pkg/enums"
	"github.com/aurumworks/jewelpos-backend/pkg/errors"
	"github.com/aurumworks/jewelpos-backend/pkg/logger"
)

// TabView is a cart snapshot plus the notices accumulated since the last
// read, both from the operation itself and from background reconciliation.
type TabView struct {
	Cart    Cart     `json:"cart"`
	Notices []Notice `json:"notices,omitempty"`
}

type catalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetByBarcode(ctx context.Context, storeID uuid.UUID, barcode string) (*models.Product, error)
}

type customerLoader interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

// Service exposes the open-tab cart operations. Saving a tab as a bill lives
// in the invoices package; everything here is in-memory state.
type Service interface {
	OpenTab(ctx context.Context, storeID uuid.UUID) (*TabView, error)
	GetTab(ctx context.Context, tabID uuid.UUID) (*TabView, error)
	CloseTab(ctx context.Context, tabID uuid.UUID) error
	AddItem(ctx context.Context, tabID, productID uuid.UUID, quantity int) (*TabView, error)
	AddItemByBarcode(ctx context.Context, tabID uuid.UUID, barcode string, quantity int) (*TabView, error)
	RemoveItem(ctx context.Context, tabID, lineID uuid.UUID) (*TabView, error)
	SetQuantity(ctx context.Context, tabID, lineID uuid.UUID, quantity int) (*TabView, error)
	SetDiscount(ctx context.Context, tabID uuid.UUID, percent decimal.Decimal) (*TabView, error)
	OverrideTotal(ctx context.Context, tabID uuid.UUID, total decimal.Decimal) (*TabView, error)
	SetCustomer(ctx context.Context, tabID uuid.UUID, customerID *uuid.UUID, name, phone string) (*TabView, error)
	SetPaymentMethod(ctx context.Context, tabID uuid.UUID, method enums.PaymentMethod) (*TabView, error)
	SetPaperSize(ctx context.Context, tabID uuid.UUID, size enums.PaperSize) (*TabView, error)
}

type service struct {
	registry  *Registry
	catalog   catalog
	customers customerLoader
	rules     Rules
	log       *logger.Logger
}

// NewService constructs the billing tab service.
func NewService(registry *Registry, catalog catalog, customers customerLoader, rules Rules, log *logger.Logger) (Service, error) {
	if registry == nil {
		return nil, fmt.Errorf("tab registry required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer loader required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		registry:  registry,
		catalog:   catalog,
		customers: customers,
		rules:     rules,
		log:       log,
	}, nil
}

func (s *service) OpenTab(ctx context.Context, storeID uuid.UUID) (*TabView, error) {
	cart := s.registry.Open(context.WithoutCancel(ctx), storeID, s.rules)
	s.log.Info(s.log.WithTabID(ctx, cart.TabID.String()), "billing tab opened")
	return &TabView{Cart: cart}, nil
}

func (s *service) GetTab(_ context.Context, tabID uuid.UUID) (*TabView, error) {
	cart, err := s.registry.Snapshot(tabID)
	if err != nil {
		return nil, err
	}
	return &TabView{Cart: cart, Notices: s.registry.DrainNotices(tabID)}, nil
}

func (s *service) CloseTab(ctx context.Context, tabID uuid.UUID) error {
	if _, err := s.registry.Snapshot(tabID); err != nil {
		return err
	}
	s.registry.Close(tabID)
	s.log.Info(s.log.WithTabID(ctx, tabID.String()), "billing tab closed")
	return nil
}

func (s *service) AddItem(ctx context.Context, tabID, productID uuid.UUID, quantity int) (*TabView, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.addProduct(ctx, tabID, product, quantity)
}

func (s *service) AddItemByBarcode(ctx context.Context, tabID uuid.UUID, barcode string, quantity int) (*TabView, error) {
	cart, err := s.registry.Snapshot(tabID)
	if err != nil {
		return nil, err
	}
	product, err := s.catalog.GetByBarcode(ctx, cart.StoreID, barcode)
	if err != nil {
		return nil, err
	}
	return s.addProduct(ctx, tabID, product, quantity)
}

func (s *service) addProduct(ctx context.Context, tabID uuid.UUID, product *models.Product, quantity int) (*TabView, error) {
	var opNotice *Notice
	cart, err := s.registry.Update(tabID, func(c Cart) (Cart, error) {
		next, notice, err := c.AddItem(productInfo(product), quantity)
		if err != nil {
			return c, err
		}
		opNotice = notice
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	if opNotice != nil {
		s.log.Info(s.log.WithTabID(ctx, tabID.String()), opNotice.Message)
	}
	return s.view(tabID, cart, opNotice), nil
}

func (s *service) RemoveItem(_ context.Context, tabID, lineID uuid.UUID) (*TabView, error) {
	cart, err := s.registry.Update(tabID, func(c Cart) (Cart, error) {
		return c.RemoveItem(lineID), nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(tabID, cart, nil), nil
}

func (s *service) SetQuantity(ctx context.Context, tabID, lineID uuid.UUID, quantity int) (*TabView, error) {
	snapshot, err := s.registry.Snapshot(tabID)
	if err != nil {
		return nil, err
	}

	// Stock is read outside the tab lock; the background reconciler fixes
	// up any race with a concurrent sale.
	stock := 0
	for _, l := range snapshot.Lines {
		if l.ID == lineID {
			product, err := s.catalog.GetProduct(ctx, l.ProductID)
			if err != nil {
				return nil, err
			}
			stock = product.Stock
			break
		}
	}

	var opNotice *Notice
	cart, err := s.registry.Update(tabID, func(c Cart) (Cart, error) {
		next, notice := c.SetQuantity(lineID, quantity, stock)
		opNotice = notice
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(tabID, cart, opNotice), nil
}

func (s *service) SetDiscount(ctx context.Context, tabID uuid.UUID, percent decimal.Decimal) (*TabView, error) {
	var opNotice *Notice
	cart, err := s.registry.Update(tabID, func(c Cart) (Cart, error) {
		next, notice := c.SetDiscount(percent)
		opNotice = notice
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	if opNotice != nil {
		s.log.Info(s.log.WithTabID(ctx, tabID.String()), opNotice.Message)
	}
	return s.view(tabID, cart, opNotice), nil
}

func (s *service) OverrideTotal(ctx context.Context, tabID uuid.UUID, total decimal.Decimal) (*TabView, error) {
	var opNotice *Notice
	cart, err := s.registry.Update(tabID, func(c Cart) (Cart, error) {
		next, notice, err := c.OverrideTotal(total)
		if err != nil {
			return c, err
		}
		opNotice = notice
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(s.log.WithTabID(ctx, tabID.String()),
		fmt.Sprintf("total overridden to %s, implied discount %s%%", total.StringFixed(2), cart.DiscountPercent.StringFixed(2)))
	return s.view(tabID, cart, opNotice), nil
}

func (s *service) SetCustomer(ctx context.Context, tabID uuid.UUID, customerID *uuid.UUID, name, phone string) (*TabView, error) {
	if customerID != nil {
		customer, err := s.customers.GetCustomer(ctx, *customerID)
		if err != nil {
			return nil, err
		}
		name = customer.Name
		phone = customer.Phone
	}
	cart, err := s.registry.Update(tabID, func(c Cart) (Cart, error) {
		return c.SetCustomer(customerID, name, phone), nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(tabID, cart, nil), nil
}

func (s *service) SetPaymentMethod(_ context.Context, tabID uuid.UUID, method enums.PaymentMethod) (*TabView, error) {
	if !method.IsValid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("invalid payment method %q", method))
	}
	cart, err := s.registry.Update(tabID, func(c Cart) (Cart, error) {
		return c.SetPaymentMethod(method), nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(tabID, cart, nil), nil
}

func (s *service) SetPaperSize(_ context.Context, tabID uuid.UUID, size enums.PaperSize) (*TabView, error) {
	if !size.IsValid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("invalid paper size %q", size))
	}
	cart, err := s.registry.Update(tabID, func(c Cart) (Cart, error) {
		return c.SetPaperSize(size), nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(tabID, cart, nil), nil
}

func (s *service) view(tabID uuid.UUID, cart Cart, opNotice *Notice) *TabView {
	notices := s.registry.DrainNotices(tabID)
	if opNotice != nil {
		notices = append(notices, *opNotice)
	}
	return &TabView{Cart: cart, Notices: notices}
}

func productInfo(p *models.Product) ProductInfo {
	info := ProductInfo{
		ID:             p.ID,
		Name:           p.Name,
		Stock:          p.Stock,
		SellingPrice:   p.SellingPrice,
		TaxRatePercent: p.TaxRatePercent,
	}
	if len(p.Barcodes) > 0 {
		info.Barcode = p.Barcodes[0]
	}
	if p.HSNCode != nil {
		info.HSNCode = *p.HSNCode
	}
	return info
}
