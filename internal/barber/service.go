package barber

import (
	"context"
	"strings"
)

// CreateBarberRequest carries data to create a barber.
type CreateBarberRequest struct {
	Name     string
	Bio      string
	IsActive *bool
}

// UpdateBarberRequest carries data for partial updates.
type UpdateBarberRequest struct {
	Name     *string
	Bio      *string
	IsActive *bool
}

type Service interface {
	Create(ctx context.Context, req CreateBarberRequest) (*Barber, error)
	GetByID(ctx context.Context, id string) (*Barber, error)
	List(ctx context.Context, filter Filter) ([]*Barber, int, error)
	Update(ctx context.Context, id string, req UpdateBarberRequest) (*Barber, error)
	Delete(ctx context.Context, id string) error
	// SetAvatar points the barber at an uploaded file and returns the file it replaced, if any.
	SetAvatar(ctx context.Context, id string, fileID string) (previous *string, err error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateBarberRequest) (*Barber, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	b := &Barber{
		Name:     name,
		Bio:      strings.TrimSpace(req.Bio),
		IsActive: true,
	}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Barber, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Barber, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateBarberRequest) (*Barber, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		b.Name = name
	}
	if req.Bio != nil {
		b.Bio = strings.TrimSpace(*req.Bio)
	}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) SetAvatar(ctx context.Context, id string, fileID string) (*string, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetAvatar(ctx, id, &fileID); err != nil {
		return nil, err
	}
	return b.AvatarFileID, nil
}
