package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/timex"
)

// fakeS3 keeps objects in memory.
type fakeS3 struct {
	objects map[string][]byte

	PutErr error
	GetErr error

	LastBucket      string
	LastContentType string
	LastDeadline    bool
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.LastBucket = aws.ToString(in.Bucket)
	f.LastContentType = aws.ToString(in.ContentType)
	_, f.LastDeadline = ctx.Deadline()
	if f.PutErr != nil {
		return nil, f.PutErr
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.LastBucket = aws.ToString(in.Bucket)
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	b, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func TestStore_PutGet(t *testing.T) {
	fake := newFakeS3()
	st := NewWithClient(fake, nil, Config{Bucket: "snaps", Timeout: timex.Duration{Duration: time.Minute}}, logging.Discard())
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "", []byte(`{"users":{}}`), "application/json"))
	assert.Equal(t, "snaps", fake.LastBucket)
	assert.Equal(t, "application/json", fake.LastContentType)
	assert.True(t, fake.LastDeadline, "timeout applied")
	assert.Contains(t, fake.objects, DefaultKey)

	got, err := st.Get(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, `{"users":{}}`, string(got))

	require.NoError(t, st.Put(ctx, "other.json", []byte(`{}`), "application/json"))
	got, err = st.Get(ctx, "other.json")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(got))
}

func TestStore_GetMissingIsNotFound(t *testing.T) {
	st := NewWithClient(newFakeS3(), nil, Config{Bucket: "snaps", Key: "k"}, logging.Discard())
	_, err := st.Get(context.Background(), "")
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, "k", st.Key())
}

func TestStore_ClientErrors(t *testing.T) {
	fake := newFakeS3()
	fake.PutErr = errors.New("boom-put")
	fake.GetErr = errors.New("boom-get")
	st := NewWithClient(fake, nil, Config{Bucket: "snaps"}, logging.Discard())

	err := st.Put(context.Background(), "", []byte("x"), "text/plain")
	require.ErrorContains(t, err, "boom-put")

	_, err = st.Get(context.Background(), "")
	require.ErrorContains(t, err, "boom-get")
	assert.False(t, errors.Is(err, common.ErrorNotFound))
}

func TestNew_AppliesConfig(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3Clients
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3Clients = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-west-1", lo.Region)
		require.NotNil(t, lo.Credentials, "static credentials applied")
		return aws.Config{}, nil
	}

	var opts s3.Options
	fake := newFakeS3()
	signer := &fakeSigner{}
	newS3Clients = func(cfg aws.Config, optFns ...func(*s3.Options)) (API, Presigner) {
		for _, fn := range optFns {
			fn(&opts)
		}
		return fake, signer
	}

	st, err := New(context.Background(), Config{
		Endpoint:  "http://127.0.0.1:9000",
		Region:    "eu-west-1",
		Bucket:    "snaps",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	}, logging.Discard())
	require.NoError(t, err)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)

	require.NoError(t, st.Put(context.Background(), "", []byte("x"), "text/plain"))
	assert.Contains(t, fake.objects, DefaultKey)

	link, err := st.PresignGet(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/"+DefaultKey, link)
	assert.Equal(t, DefaultLinkTTL, signer.lastExpires)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(context.Background(), Config{}, logging.Discard())
	require.ErrorIs(t, err, common.ErrorValidation)

	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no profile")
	}

	_, err = New(context.Background(), Config{Bucket: "b"}, logging.Discard())
	require.ErrorContains(t, err, "no profile")
}

type fakeSigner struct {
	err         error
	lastExpires time.Duration
}

func (f *fakeSigner) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	var po s3.PresignOptions
	for _, fn := range optFns {
		fn(&po)
	}
	f.lastExpires = po.Expires
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{URL: "https://signed.example/" + aws.ToString(in.Key), Method: "GET"}, nil
}

func TestStore_PresignGet(t *testing.T) {
	signer := &fakeSigner{}
	st := NewWithClient(newFakeS3(), signer, Config{Bucket: "snaps"}, logging.Discard())

	link, err := st.PresignGet(context.Background(), "a.json", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/a.json", link)
	assert.Equal(t, time.Hour, signer.lastExpires)

	signer.err = errors.New("no creds")
	_, err = st.PresignGet(context.Background(), "a.json", 0)
	require.ErrorContains(t, err, "no creds")

	_, err = NewWithClient(newFakeS3(), nil, Config{Bucket: "snaps"}, logging.Discard()).PresignGet(context.Background(), "", 0)
	require.Error(t, err)
}
