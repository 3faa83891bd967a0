package memory

import (
	"context"
	"sort"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
)

type userRepository struct{ v *view }

func (r *userRepository) Create(_ context.Context, login, passwordHash string, telegramChatID int64) (*model.User, error) {
	var out model.User
	err := r.v.do(func(d *dataset) error {
		if _, exists := d.logins[login]; exists {
			return domainErrors.ErrAlreadyExists
		}
		if telegramChatID != 0 {
			for _, u := range d.users {
				if u.TelegramChatID == telegramChatID {
					return domainErrors.ErrAlreadyExists
				}
			}
		}
		d.lastUserID++
		out = model.User{
			ID:             d.lastUserID,
			Login:          login,
			PasswordHash:   passwordHash,
			TelegramChatID: telegramChatID,
			CreatedAt:      r.v.now(),
		}
		d.users[out.ID] = out
		d.logins[login] = out.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	var id int64
	err := r.v.do(func(d *dataset) error {
		var ok bool
		if id, ok = d.logins[login]; !ok {
			return domainErrors.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) GetByID(_ context.Context, id int64) (*model.User, error) {
	var out model.User
	err := r.v.do(func(d *dataset) error {
		u, ok := d.users[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepository) GetByTelegramChatID(_ context.Context, chatID int64) (*model.User, error) {
	var out model.User
	err := r.v.do(func(d *dataset) error {
		for _, u := range d.users {
			if chatID != 0 && u.TelegramChatID == chatID {
				out = u
				return nil
			}
		}
		return domainErrors.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepository) SetTelegramChatID(_ context.Context, userID, chatID int64) error {
	return r.v.do(func(d *dataset) error {
		u, ok := d.users[userID]
		if !ok {
			return domainErrors.ErrNotFound
		}
		if chatID != 0 {
			for id, other := range d.users {
				if id != userID && other.TelegramChatID == chatID {
					return domainErrors.ErrAlreadyExists
				}
			}
		}
		u.TelegramChatID = chatID
		d.users[userID] = u
		return nil
	})
}

type serviceRepository struct{ v *view }

func (r *serviceRepository) Create(_ context.Context, s *model.Service) error {
	return r.v.do(func(d *dataset) error {
		if s.ID == "" {
			s.ID = newID()
		}
		if _, exists := d.services[s.ID]; exists {
			return domainErrors.ErrAlreadyExists
		}
		s.CreatedAt = r.v.now()
		d.services[s.ID] = *s
		return nil
	})
}

func (r *serviceRepository) Get(_ context.Context, id string) (*model.Service, error) {
	var out model.Service
	err := r.v.do(func(d *dataset) error {
		s, ok := d.services[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *serviceRepository) List(_ context.Context) ([]model.Service, error) {
	var result []model.Service
	err := r.v.do(func(d *dataset) error {
		for _, s := range d.services {
			result = append(result, s)
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, err
}

type reviewRepository struct{ v *view }

func (r *reviewRepository) Insert(_ context.Context, review *model.Review) error {
	return r.v.do(func(d *dataset) error {
		if _, exists := d.reviews[review.OrderID]; exists {
			return domainErrors.ErrAlreadyExists
		}
		if review.ID == "" {
			review.ID = newID()
		}
		review.CreatedAt = r.v.now()
		d.reviews[review.OrderID] = *review
		return nil
	})
}

func (r *reviewRepository) ReviewedOrderIDs(_ context.Context, clientID int64, serviceID string) ([]string, error) {
	var ids []string
	err := r.v.do(func(d *dataset) error {
		for _, rv := range d.reviews {
			if rv.ClientID == clientID && rv.ServiceID == serviceID {
				ids = append(ids, rv.OrderID)
			}
		}
		return nil
	})
	sort.Strings(ids)
	return ids, err
}

func (r *reviewRepository) ListByService(_ context.Context, serviceID string) ([]model.Review, error) {
	var result []model.Review
	err := r.v.do(func(d *dataset) error {
		for _, rv := range d.reviews {
			if rv.ServiceID == serviceID {
				result = append(result, rv)
			}
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, err
}
