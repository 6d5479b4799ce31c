package service

import (
	"context"
	"time"

	"stewardship-be/internal/entity"
	"stewardship-be/internal/repository/specification"
	"stewardship-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// IMemberDirectory resolves contributor details (name, email, processor
// customer id). Member data is owned by another subsystem and changes
// rarely, so lookups are cached.
type IMemberDirectory interface {
	Lookup(ctx context.Context, memberId uuid.UUID) (*entity.Member, error)
}

type memberDirectory struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *cache.Cache
}

func NewMemberDirectory(uowFactory unitofwork.RepositoryFactory) IMemberDirectory {
	return &memberDirectory{
		uowFactory: uowFactory,
		cache:      cache.New(5*time.Minute, 10*time.Minute),
	}
}

func (d *memberDirectory) Lookup(ctx context.Context, memberId uuid.UUID) (*entity.Member, error) {
	key := memberId.String()
	if cached, found := d.cache.Get(key); found {
		return cached.(*entity.Member), nil
	}

	uow := d.uowFactory.NewUnitOfWork(ctx)
	member, err := uow.MemberRepository().FindOne(ctx, specification.ByID{ID: memberId})
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, nil
	}

	d.cache.Set(key, member, cache.DefaultExpiration)
	return member, nil
}
