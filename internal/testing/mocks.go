package testing

import (
	"github.com/stretchr/testify/mock"
)

// MockKVStore is a testify mock of kvstore.Store
type MockKVStore struct {
	mock.Mock
}

func (m *MockKVStore) Get(key string) ([]byte, bool, error) {
	args := m.Called(key)
	var value []byte
	if v := args.Get(0); v != nil {
		value = v.([]byte)
	}
	return value, args.Bool(1), args.Error(2)
}

func (m *MockKVStore) Set(key string, value []byte) error {
	return m.Called(key, value).Error(0)
}

func (m *MockKVStore) Remove(key string) error {
	return m.Called(key).Error(0)
}

func (m *MockKVStore) Keys(prefix string) ([]string, error) {
	args := m.Called(prefix)
	var keys []string
	if v := args.Get(0); v != nil {
		keys = v.([]string)
	}
	return keys, args.Error(1)
}
