package utils

import (
	"fmt"
	"net/url"
	"strings"
)

const CatalogBasePath = "/api/v1/catalog"

// RevisionPath is the relative path of a revision's raw payload. A zero
// commitID points at the most recent revision.
func RevisionPath(bucketName, objectName string, commitID int64) string {
	base := fmt.Sprintf("%s/buckets/%s/resources/%s", CatalogBasePath,
		url.PathEscape(bucketName), url.PathEscape(objectName))
	if commitID == 0 {
		return base + "/raw"
	}
	return fmt.Sprintf("%s/revisions/%d/raw", base, commitID)
}

// AbsoluteURL joins the public domain name and a relative path.
func AbsoluteURL(domainName, path string) string {
	return strings.TrimRight(domainName, "/") + path
}
