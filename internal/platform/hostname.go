package platform

import "fmt"

// SiteURL derives the default engine site URL for a tenant.
// Example: https://acme.erp.biashara.africa
func SiteURL(scheme, tenantName, baseDomain string) string {
	return fmt.Sprintf("%s://%s.%s", scheme, tenantName, baseDomain)
}
