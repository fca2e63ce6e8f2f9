package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"slideforge/internal/config"
)

// ObjectStore 封装 MinIO 客户端，保存幻灯片引用的图片资产。
type ObjectStore struct {
	client     *minio.Client
	bucketName string
}

// NewObjectStore 根据配置初始化 MinIO 客户端，并确保目标 Bucket 存在。
func NewObjectStore(cfg config.MinIOConfig) (*ObjectStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &ObjectStore{client: client, bucketName: cfg.Bucket}, nil
}

// PutAsset 将资产上传到 Bucket，返回对象键。
func (o *ObjectStore) PutAsset(ctx context.Context, assetID string, data []byte, contentType string) (string, error) {
	key := "assets/" + assetID
	_, err := o.client.PutObject(ctx, o.bucketName, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}
	return key, nil
}

// GetAsset 读取资产内容。对象不存在时返回 ErrNotFound。
func (o *ObjectStore) GetAsset(ctx context.Context, assetID string) ([]byte, error) {
	key := "assets/" + assetID
	obj, err := o.client.GetObject(ctx, o.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %q: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if IsNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read object %q: %w", key, err)
	}
	return data, nil
}
