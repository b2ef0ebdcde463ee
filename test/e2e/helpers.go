//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/DrSkyle/proofscope/pkg/storage"
)

// NewBucket creates a bucket in LocalStack and returns a store over it.
func NewBucket(t *testing.T, bucket string) *storage.S3Store {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewS3StoreFromOptions(ctx, bucket, storage.S3Options{Region: "us-east-1", Endpoint: endpoint})
	if err != nil {
		t.Fatalf("Failed to build store: %v", err)
	}
	if _, err := store.Client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)}); err != nil {
		t.Fatalf("Failed to create bucket %s: %v", bucket, err)
	}
	return store
}

// RunCLI runs the built binary with an isolated HOME, pointed at LocalStack.
func RunCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	full := append([]string{"--skip-telemetry", "--aws-endpoint", endpoint, "--aws-region", "us-east-1"}, args...)
	cmd := exec.Command(binPath, full...)
	cmd.Env = append(os.Environ(), "HOME="+t.TempDir())

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
