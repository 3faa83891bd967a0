package memory

import (
	"context"
	"sort"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
)

type orderRepository struct{ v *view }

func (r *orderRepository) Get(_ context.Context, id string) (*model.Order, error) {
	var out model.Order
	err := r.v.do(func(d *dataset) error {
		o, ok := d.orders[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *orderRepository) Insert(_ context.Context, order *model.Order) error {
	return r.v.do(func(d *dataset) error {
		if order.ID == "" {
			order.ID = newID()
		}
		if _, exists := d.orders[order.ID]; exists {
			return domainErrors.ErrAlreadyExists
		}
		if order.Status.Active() {
			for _, o := range d.orders {
				if o.ClientID == order.ClientID && o.ServiceID == order.ServiceID && o.Status.Active() {
					return domainErrors.ErrActiveOrderExists
				}
			}
		}
		now := r.v.now()
		order.CreatedAt = now
		order.UpdatedAt = now
		d.orders[order.ID] = *order
		return nil
	})
}

func (r *orderRepository) ConditionalUpdate(_ context.Context, id string, expected, next model.OrderStatus) (*model.Order, error) {
	var out model.Order
	err := r.v.do(func(d *dataset) error {
		o, ok := d.orders[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		if o.Status != expected {
			return domainErrors.ErrConflict
		}
		o.Status = next
		o.UpdatedAt = r.v.now()
		d.orders[id] = o
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *orderRepository) ListByUser(_ context.Context, userID int64) ([]model.Order, error) {
	var result []model.Order
	err := r.v.do(func(d *dataset) error {
		for _, o := range d.orders {
			if o.ClientID == userID || o.ProviderID == userID {
				result = append(result, o)
			}
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, err
}

func (r *orderRepository) ListCompleted(_ context.Context, clientID int64, serviceID string) ([]model.Order, error) {
	var result []model.Order
	err := r.v.do(func(d *dataset) error {
		for _, o := range d.orders {
			if o.ClientID == clientID && o.ServiceID == serviceID && o.Status == model.OrderStatusCompleted {
				result = append(result, o)
			}
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, err
}
