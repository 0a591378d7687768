package reliability

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var errBucketDown = errors.New("bucket unavailable")

// memoryBucket is an in-process ObjectStore
type memoryBucket struct {
	mu         sync.Mutex
	objects    map[string][]byte
	failUpload bool
	failList   bool
	failDelete map[string]bool
}

func newMemoryBucket() *memoryBucket {
	return &memoryBucket{objects: make(map[string][]byte), failDelete: make(map[string]bool)}
}

func (b *memoryBucket) Upload(_ context.Context, key string, body io.Reader, _ int64) error {
	if b.failUpload {
		return errBucketDown
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return nil
}

func (b *memoryBucket) List(_ context.Context, prefix string) ([]types.Object, error) {
	if b.failList {
		return nil, errBucketDown
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var objects []types.Object
	for key, data := range b.objects {
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, types.Object{Key: aws.String(key), Size: aws.Int64(int64(len(data)))})
		}
	}
	sort.Slice(objects, func(i, j int) bool { return *objects[i].Key < *objects[j].Key })
	return objects, nil
}

func (b *memoryBucket) Delete(_ context.Context, key string) error {
	if b.failDelete[key] {
		return errBucketDown
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

func (b *memoryBucket) keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.objects))
	for key := range b.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
