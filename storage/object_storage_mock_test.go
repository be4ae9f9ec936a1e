package storage

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockObjectStorage struct {
	mock.Mock
}

func (obj *MockObjectStorage) Upload(ctx context.Context, bucket, key string, body []byte) error {
	ret := obj.Called(ctx, bucket, key, body)
	return ret.Error(0)
}

func (obj *MockObjectStorage) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	ret := obj.Called(ctx, bucket, key)
	return ret.Get(0).([]byte), ret.Error(1)
}
