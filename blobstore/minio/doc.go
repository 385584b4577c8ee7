// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible systems such as Ceph,
// SeaweedFS and Garage, without the AWS SDK.
//
//	store, err := minio.New(minio.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	    Bucket:    "bitfields",
//	    Prefix:    "tenant-a/",
//	})
//	blocks := blockstore.NewBlobBlockstore(store)
//
// MinIO offers no compare-and-swap on objects, so a single writer per
// prefix is assumed when publishing heads.
package minio
