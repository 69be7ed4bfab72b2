package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeS3 struct {
	s3iface.S3API

	objects map[string][]byte
	heads   map[string]*s3.HeadObjectOutput
	put     *s3.PutObjectInput
	copied  *s3.CopyObjectInput
	putErr  error
	headErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		objects: make(map[string][]byte),
		heads:   make(map[string]*s3.HeadObjectOutput),
	}
}

func (f *fakeS3) GetObjectWithContext(ctx aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.StringValue(in.Key)]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist.", nil)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.put = in
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObjectWithContext(ctx aws.Context, in *s3.HeadObjectInput, _ ...request.Option) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	out, ok := f.heads[aws.StringValue(in.Key)]
	if !ok {
		return nil, awserr.New("NotFound", "Not Found", nil)
	}
	return out, nil
}

func (f *fakeS3) CopyObjectWithContext(ctx aws.Context, in *s3.CopyObjectInput, _ ...request.Option) (*s3.CopyObjectOutput, error) {
	f.copied = in
	return &s3.CopyObjectOutput{}, nil
}

func TestS3GatewayGet(t *testing.T) {
	fake := newFakeS3()
	fake.objects["photos/1.jpg"] = []byte("jpeg")
	g := NewS3GatewayWithClient(fake, "us-east-1", zap.NewNop())

	data, err := g.Get(context.Background(), "origin", "photos/1.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)

	_, err = g.Get(context.Background(), "origin", "photos/2.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3GatewayPut(t *testing.T) {
	fake := newFakeS3()
	g := NewS3GatewayWithClient(fake, "us-east-1", zap.NewNop())

	key, err := g.Put(context.Background(), "dest", "480w/photos/1.png", []byte("png"), PutOptions{
		RedirectLocation: "https://cdn.example.com/480w/photos/1.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "480w/photos/1.png", key)

	require.NotNil(t, fake.put)
	assert.Equal(t, "dest", aws.StringValue(fake.put.Bucket))
	assert.Equal(t, s3.ObjectCannedACLPrivate, aws.StringValue(fake.put.ACL))
	assert.Equal(t, "image/png", aws.StringValue(fake.put.ContentType))
	assert.Equal(t, "https://cdn.example.com/480w/photos/1.png", aws.StringValue(fake.put.WebsiteRedirectLocation))
	assert.Nil(t, fake.put.Metadata)

	fake.putErr = errors.New("access denied")
	_, err = g.Put(context.Background(), "dest", "480w/photos/1.png", []byte("png"), PutOptions{ContentType: "image/jpeg"})
	assert.ErrorContains(t, err, "access denied")
}

func TestS3GatewayHead(t *testing.T) {
	fake := newFakeS3()
	fake.heads["480w/photos/1.jpg"] = &s3.HeadObjectOutput{
		ContentType:             aws.String("image/jpeg"),
		ContentLength:           aws.Int64(42),
		WebsiteRedirectLocation: aws.String("https://cdn/480w/photos/1.jpg"),
		Metadata:                map[string]*string{"Blurhash": aws.String("abc")},
	}
	g := NewS3GatewayWithClient(fake, "us-east-1", zap.NewNop())

	meta, err := g.Head(context.Background(), "dest", "480w/photos/1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", meta.ContentType)
	assert.EqualValues(t, 42, meta.ContentLength)
	assert.Equal(t, "https://cdn/480w/photos/1.jpg", meta.RedirectLocation)
	assert.Equal(t, "abc", meta.MetadataValue("blurhash"))

	_, err = g.Head(context.Background(), "dest", "360w/photos/1.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3GatewayCopyWithMetadataReplace(t *testing.T) {
	fake := newFakeS3()
	fake.heads["photos/my image.jpg"] = &s3.HeadObjectOutput{
		ContentType: aws.String("image/jpeg"),
		Metadata:    map[string]*string{"Owner": aws.String("alice")},
	}
	g := NewS3GatewayWithClient(fake, "us-east-1", zap.NewNop())

	err := g.CopyWithMetadataReplace(context.Background(), "origin", "photos/my image.jpg", map[string]string{
		"blurhash": "LEHV6nWB2yk8",
	})
	require.NoError(t, err)

	require.NotNil(t, fake.copied)
	assert.Equal(t, "origin/photos/my%20image.jpg", aws.StringValue(fake.copied.CopySource))
	assert.Equal(t, s3.MetadataDirectiveReplace, aws.StringValue(fake.copied.MetadataDirective))
	assert.Equal(t, "image/jpeg", aws.StringValue(fake.copied.ContentType))
	assert.Equal(t, map[string]string{
		"owner":    "alice",
		"blurhash": "LEHV6nWB2yk8",
	}, aws.StringValueMap(fake.copied.Metadata))
}

func TestS3GatewayCopyWithMetadataReplaceHeadFailure(t *testing.T) {
	fake := newFakeS3()
	fake.heads["photos/1.jpg"] = &s3.HeadObjectOutput{
		ContentType: aws.String("image/jpeg"),
		Metadata:    map[string]*string{"Owner": aws.String("alice")},
	}
	fake.headErr = awserr.New("SlowDown", "Please reduce your request rate.", nil)
	g := NewS3GatewayWithClient(fake, "us-east-1", zap.NewNop())

	err := g.CopyWithMetadataReplace(context.Background(), "origin", "photos/1.jpg", map[string]string{
		"blurhash": "x",
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "SlowDown")
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Nil(t, fake.copied, "no copy is issued without the current metadata")

	fake.headErr = nil
	err = g.CopyWithMetadataReplace(context.Background(), "origin", "photos/missing.jpg", map[string]string{
		"blurhash": "x",
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, fake.copied)
}
