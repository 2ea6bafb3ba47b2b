package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"docanalysis-backend/internal/shared/storage/object"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "documents/file.pdf", want: "documents/file.pdf"},
		{name: "simple prefix", prefix: "root", key: "documents/file.pdf", want: "root/documents/file.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "documents/file.pdf", want: "root/documents/file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/documents/file.pdf", want: "root/documents/file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "documents/file.pdf", want: "root/sub/documents/file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

type fakeS3 struct {
	objects map[string][]byte
	puts    []*s3.PutObjectInput
	deleted []string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	key := aws.ToString(in.Key)
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestSaveOpenDelete(t *testing.T) {
	fake := newFakeS3()
	store := NewWithClient(fake, "bucket", "/tenant/", "")
	ctx := context.Background()

	key, size, mimeType, err := store.Save(ctx, "report.json", strings.NewReader(`{"a":1}`))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(key, "documents/") || !strings.HasSuffix(key, "_report.json") {
		t.Fatalf("unexpected key %q", key)
	}
	if size != 7 {
		t.Fatalf("unexpected size %d", size)
	}
	if mimeType != "application/json" {
		t.Fatalf("unexpected mime %q", mimeType)
	}
	put := fake.puts[0]
	if aws.ToString(put.Key) != "tenant/"+key {
		t.Fatalf("unexpected object key %q", aws.ToString(put.Key))
	}
	if put.ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256 encryption, got %s", put.ServerSideEncryption)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != `{"a":1}` {
		t.Fatalf("unexpected data %q", data)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(fake.deleted) != 1 || fake.deleted[0] != "tenant/"+key {
		t.Fatalf("unexpected deletes %v", fake.deleted)
	}
	if _, err := store.Open(ctx, key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound opening deleted object, got %v", err)
	}
}

func TestSaveUsesKMSWhenConfigured(t *testing.T) {
	fake := newFakeS3()
	store := NewWithClient(fake, "bucket", "", "kms-key")

	if _, _, _, err := store.Save(context.Background(), "a.txt", strings.NewReader("a")); err != nil {
		t.Fatalf("save: %v", err)
	}
	put := fake.puts[0]
	if put.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms || aws.ToString(put.SSEKMSKeyId) != "kms-key" {
		t.Fatalf("expected kms encryption, got %s %q", put.ServerSideEncryption, aws.ToString(put.SSEKMSKeyId))
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), "us-east-1", "", "", ""); err == nil {
		t.Fatalf("expected error")
	}
}
