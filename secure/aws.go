package secure

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/aws/aws-sdk-go/service/ssm/ssmiface"
)

type AWSSecureStore struct {
	client ssmiface.SSMAPI
}

func NewAWSSecureStore(session *session.Session) *AWSSecureStore {
	return &AWSSecureStore{
		client: ssm.New(session),
	}
}

// Get returns the decrypted value of the SecureString parameter key.
func (store *AWSSecureStore) Get(key string) (string, error) {
	resp, err := store.client.GetParameter(&ssm.GetParameterInput{
		Name: aws.String(key), WithDecryption: aws.Bool(true)})

	if err != nil {
		if awsErr, ok := err.(awserr.Error); ok && awsErr.Code() == ssm.ErrCodeParameterNotFound {
			return "", fmt.Errorf("secure parameter %q not found", key)
		}

		return "", err
	}

	if resp.Parameter == nil || resp.Parameter.Value == nil {
		return "", fmt.Errorf("secure parameter %q has no value", key)
	}

	return *(resp.Parameter.Value), nil
}
