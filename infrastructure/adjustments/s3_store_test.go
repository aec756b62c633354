package adjustments

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryS3 is an in-memory bucket. pageSize forces pagination in List.
type memoryS3 struct {
	mu       sync.Mutex
	objects  map[string][]byte
	pageSize int
	getErr   error
}

func newMemoryS3() *memoryS3 {
	return &memoryS3{objects: make(map[string][]byte), pageSize: 2}
}

func (m *memoryS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *memoryS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[aws.ToString(params.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *memoryS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, aws.ToString(params.Prefix)) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	start := 0
	if token := aws.ToString(params.ContinuationToken); token != "" {
		start = sort.SearchStrings(keys, token)
	}
	end := start + m.pageSize
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	if end < len(keys) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[end])
	} else {
		end = len(keys)
	}
	for _, key := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
	}
	return out, nil
}

func TestS3Store_SetAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bucket := newMemoryS3()
	store := newS3Store(bucket, "levelbot-counts", "/adjusted")

	assert.Equal(t, int64(0), store.Get(ctx, 1, 100))

	require.NoError(t, store.Set(ctx, 1, 100, 450))
	assert.Equal(t, int64(450), store.Get(ctx, 1, 100))

	data, ok := bucket.objects["adjusted/guild_1/100.json"]
	require.True(t, ok)
	assert.JSONEq(t, `{"adjusted_message_count": 450}`, string(data))
}

func TestS3Store_UnreadableReadsZero(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bucket := newMemoryS3()
	store := newS3Store(bucket, "levelbot-counts", "")

	bucket.objects["guild_1/100.json"] = []byte("{")
	assert.Equal(t, int64(0), store.Get(ctx, 1, 100))

	bucket.getErr = errors.New("access denied")
	assert.Equal(t, int64(0), store.Get(ctx, 1, 101))
}

func TestS3Store_ListPaginates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bucket := newMemoryS3()
	store := newS3Store(bucket, "levelbot-counts", "adjusted/")

	for id, adjusted := range map[int64]int64{100: 1, 200: 2, 300: 3, 400: 0, 500: 5} {
		require.NoError(t, store.Set(ctx, 7, id, adjusted))
	}
	require.NoError(t, store.Set(ctx, 8, 100, 99))

	records, err := store.List(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{100: 1, 200: 2, 300: 3, 500: 5}, records)
}
