package s3provider

import (
	"errors"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"

	"github.com/fileprovider/gateway/pkg/perr"
)

// mapErr reconstructs a *perr.Error from the AWS SDK's transport-level
// response error, mirroring the teacher's aws.Err: an S3 HTTP status code
// translates directly to the gateway's own error taxonomy.
func mapErr(err error, ref string) error {
	if err == nil {
		return nil
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		if respErr.HTTPStatusCode() == 404 {
			return perr.NotFound(ref)
		}
		return perr.FromCode(respErr.HTTPStatusCode())
	}
	return err
}
