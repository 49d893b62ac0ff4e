// Package archive keeps dated copies of roster snapshots in S3 so an
// overwritten version can be recovered by hand.
package archive

import (
	"bytes"
	"context"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	log "github.com/sirupsen/logrus"
)

type S3Archive struct {
	client s3iface.S3API
	bucket string
	prefix string
	log    *log.Entry
}

func NewS3Archive(log *log.Entry, session *session.Session, bucket, prefix string) *S3Archive {
	return &S3Archive{
		client: s3.New(session),
		bucket: bucket,
		prefix: prefix,
		log:    log,
	}
}

func (a *S3Archive) Save(ctx context.Context, name string, content []byte) error {
	key := a.prefix + name

	_, err := a.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Body:        bytes.NewReader(content),
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(http.DetectContentType(content)),
	})

	if err != nil {
		return err
	}

	a.log.Infoln("archived snapshot:", "s3://"+a.bucket+"/"+key)
	return nil
}

// BackupName maps a repository path to its dated backup name,
// e.g. "docs/roster.txt" on 2024-05-01 -> "roster_20240501.txt".
func BackupName(file string, day time.Time) string {
	base := path.Base(file)
	ext := path.Ext(base)

	return strings.TrimSuffix(base, ext) + "_" + day.Format("20060102") + ext
}
