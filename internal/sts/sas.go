package sts

import (
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"

	"github.com/Luiggi-Git/carocha-functions/internal/credential"
	"github.com/Luiggi-Git/carocha-functions/internal/domain"
	"github.com/Luiggi-Git/carocha-functions/internal/policy"
)

// SASSigner signs blob-scoped service SAS tokens with the account shared key.
// Signing is a local HMAC-SHA256 computation; no request leaves the process.
type SASSigner struct {
	key      *azblob.SharedKeyCredential
	protocol sas.Protocol
}

// NewSASSigner decodes the account key once so a bad key fails at startup.
func NewSASSigner(cred credential.StoreCredential) (*SASSigner, error) {
	if cred.Identity == "" || cred.SecretKey == "" {
		return nil, domain.NewConfigError("connection string", "missing account name or key")
	}
	key, err := azblob.NewSharedKeyCredential(cred.Identity, cred.SecretKey)
	if err != nil {
		// the decode error is not passed through, it may quote key bytes
		return nil, domain.NewConfigError("connection string", "account key is not valid base64")
	}
	protocol := sas.ProtocolHTTPS
	if cred.Insecure() {
		protocol = sas.ProtocolHTTPSandHTTP
	}
	return &SASSigner{key: key, protocol: protocol}, nil
}

// Sign implements Signer.
func (s *SASSigner) Sign(grant policy.AccessGrant) (string, error) {
	qp, err := sas.BlobSignatureValues{
		Protocol:      s.protocol,
		StartTime:     grant.ValidFrom.UTC(),
		ExpiryTime:    grant.ValidUntil.UTC(),
		Permissions:   blobPermissions(grant.Permissions).String(),
		ContainerName: grant.ContainerName,
		BlobName:      grant.ObjectName,
	}.SignWithSharedKey(s.key)
	if err != nil {
		return "", err
	}
	return qp.Encode(), nil
}

func blobPermissions(p policy.Permissions) *sas.BlobPermissions {
	return &sas.BlobPermissions{
		Create: p.Create,
		Write:  p.Write,
		Read:   p.Read,
	}
}
