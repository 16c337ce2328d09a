package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/limbo/studytrack/pkg/entity"
)

var loc = time.FixedZone("UTC+8", 8*3600)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type generatorMock struct {
	err   error
	calls int
}

func (g *generatorMock) GenerateForUser(ctx context.Context, uid uuid.UUID) ([]*entity.Task, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return []*entity.Task{{UserID: uid}}, nil
}

type lockerMock struct {
	held     map[string]bool
	released []string
}

func newLockerMock() *lockerMock {
	return &lockerMock{held: make(map[string]bool)}
}

func (l *lockerMock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *lockerMock) Release(ctx context.Context, key string) error {
	delete(l.held, key)
	l.released = append(l.released, key)
	return nil
}

func ptr[T any](v T) *T {
	return &v
}

func checkInAt(t entity.CheckInType, at time.Time) entity.CheckIn {
	return entity.CheckIn{ID: uuid.New(), Type: t, Content: "session", CreatedAt: at}
}
