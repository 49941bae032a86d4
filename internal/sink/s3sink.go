package sink

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// S3Sink buffers every written rule in memory, gzips the accumulated
// blocklist on Close, and uploads it as one object. Grounded on
// DNShield's logging.RemoteLogger.uploadToS3: gzip into a bytes.Buffer,
// then a single timeboxed PutObject.
type S3Sink struct {
	client *s3.Client
	bucket string
	prefix string
	buf    *BufferSink
}

// NewS3Sink returns a sink that accumulates rules locally and flushes
// them to bucket/prefix on Close.
func NewS3Sink(client *s3.Client, bucket, prefix string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, prefix: prefix, buf: NewBufferSink()}
}

func (s *S3Sink) WriteLine(payload []byte) error {
	return s.buf.WriteLine(payload)
}

func (s *S3Sink) Lines() []LiteLine { return s.buf.Lines() }

// Close gzips the accumulated rules (one rule per line, newline
// separated, the FileSink line format) and uploads it under the
// timestamped key <prefix>blocklist-<UTC time>.txt.gz. S3Source does not
// decompress, so it reads such an object back as gzip bytes.
func (s *S3Sink) Close() error {
	if s.client == nil {
		return nil
	}

	var gzBuf bytes.Buffer
	gw := gzip.NewWriter(&gzBuf)
	for _, line := range s.buf.Lines() {
		if _, err := gw.Write(s.buf.Slice(line)); err != nil {
			return fmt.Errorf("sink: compress rule: %w", err)
		}
		if _, err := gw.Write([]byte{'\n'}); err != nil {
			return fmt.Errorf("sink: compress newline: %w", err)
		}
	}
	if err := gw.Close(); err != nil {
		return fmt.Errorf("sink: finalize gzip: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	key := fmt.Sprintf("%sblocklist-%s.txt.gz", s.prefix, time.Now().UTC().Format("20060102-150405"))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(s.bucket),
		Key:             aws.String(key),
		Body:            bytes.NewReader(gzBuf.Bytes()),
		ContentType:     aws.String("text/plain"),
		ContentEncoding: aws.String("gzip"),
	})
	if err != nil {
		logrus.WithError(err).Error("sink: failed to upload consolidated blocklist to S3")
		return fmt.Errorf("sink: upload to s3: %w", err)
	}
	return nil
}
