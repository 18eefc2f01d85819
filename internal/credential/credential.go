// Package credential turns an Azure storage connection string into the
// shared-key credential used to sign access grants.
package credential

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Luiggi-Git/carocha-functions/internal/domain"
)

const (
	keyAccountName    = "AccountName"
	keyAccountKey     = "AccountKey"
	keyProtocol       = "DefaultEndpointsProtocol"
	keyEndpointSuffix = "EndpointSuffix"
	keyBlobEndpoint   = "BlobEndpoint"
	keyUseDevelopment = "UseDevelopmentStorage"
	defaultProtocol   = "https"
	defaultSuffix     = "core.windows.net"
	settingDescriptor = "connection string"
)

// Well-known Azurite development account. These values are published by
// Microsoft and are not secret.
const (
	devAccountName  = "devstoreaccount1"
	devAccountKey   = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="
	devBlobEndpoint = "http://127.0.0.1:10000/devstoreaccount1"
)

// StoreCredential is the account identity and shared secret parsed from a
// connection string.
type StoreCredential struct {
	Identity  string
	SecretKey string

	Protocol       string
	EndpointSuffix string
	BlobEndpoint   string
}

// Parse reads a connection string of the form Key1=Val1;Key2=Val2.
func Parse(descriptor string) (StoreCredential, error) {
	if strings.TrimSpace(descriptor) == "" {
		return StoreCredential{}, domain.NewConfigError(settingDescriptor, "empty")
	}

	fields := make(map[string]string)
	for _, segment := range strings.Split(descriptor, ";") {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		// Split on the first '=' only: base64 account keys end in padding.
		k, v, ok := strings.Cut(segment, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return StoreCredential{}, domain.NewConfigError(settingDescriptor, "malformed segment, expected key=value")
		}
		fields[k] = strings.TrimSpace(v)
	}

	if strings.EqualFold(fields[keyUseDevelopment], "true") {
		return StoreCredential{
			Identity:       devAccountName,
			SecretKey:      devAccountKey,
			Protocol:       "http",
			EndpointSuffix: defaultSuffix,
			BlobEndpoint:   devBlobEndpoint,
		}, nil
	}

	cred := StoreCredential{
		Identity:       fields[keyAccountName],
		SecretKey:      fields[keyAccountKey],
		Protocol:       fields[keyProtocol],
		EndpointSuffix: fields[keyEndpointSuffix],
		BlobEndpoint:   strings.TrimRight(fields[keyBlobEndpoint], "/"),
	}
	if cred.Identity == "" {
		return StoreCredential{}, domain.NewConfigError(settingDescriptor, "missing "+keyAccountName)
	}
	if cred.SecretKey == "" {
		return StoreCredential{}, domain.NewConfigError(settingDescriptor, "missing "+keyAccountKey)
	}
	if cred.Protocol == "" {
		cred.Protocol = defaultProtocol
	}
	if cred.EndpointSuffix == "" {
		cred.EndpointSuffix = defaultSuffix
	}
	if cred.BlobEndpoint != "" {
		if _, err := url.Parse(cred.BlobEndpoint); err != nil {
			return StoreCredential{}, domain.NewConfigError(settingDescriptor, "invalid "+keyBlobEndpoint)
		}
	}
	return cred, nil
}

// ServiceURL is the blob service endpoint, without a trailing slash.
func (c StoreCredential) ServiceURL() string {
	if c.BlobEndpoint != "" {
		return c.BlobEndpoint
	}
	return fmt.Sprintf("%s://%s.blob.%s", c.Protocol, c.Identity, c.EndpointSuffix)
}

// Insecure reports whether the service endpoint is plain http (Azurite).
func (c StoreCredential) Insecure() bool {
	return strings.HasPrefix(strings.ToLower(c.ServiceURL()), "http://")
}

// String redacts the secret key.
func (c StoreCredential) String() string {
	return fmt.Sprintf("StoreCredential{Identity: %s, SecretKey: [redacted], ServiceURL: %s}", c.Identity, c.ServiceURL())
}

// GoString keeps %#v from printing the key.
func (c StoreCredential) GoString() string {
	return c.String()
}
