package repository

import (
	"errors"
	"log"

	"github.com/fieldflow/timelog_service/internal/domain"
	"gorm.io/gorm"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderRepository interface {
	CreateOrder(order *domain.Order) (*domain.Order, error)
	FindOrderById(orderID uint) (*domain.Order, error)
	DeleteOrder(orderID uint) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrder(order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("nil order")
	}

	if err := r.db.Create(order).Error; err != nil {
		log.Printf("create order error: %v", err)
		return nil, errors.New("failed to create order")
	}

	return order, nil
}

func (r *orderRepository) FindOrderById(orderID uint) (*domain.Order, error) {
	order := &domain.Order{}

	if err := r.db.First(order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Printf("find order by id error: %v", err)
		return nil, errors.New("failed to find order")
	}

	return order, nil
}

// DeleteOrder removes the order; the FK cascade removes its time logs.
func (r *orderRepository) DeleteOrder(orderID uint) error {
	if err := r.db.Delete(&domain.Order{}, orderID).Error; err != nil {
		log.Printf("delete order error: %v", err)
		return errors.New("failed to delete order")
	}
	return nil
}
