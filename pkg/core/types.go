package core

import (
	"strings"
	"time"
)

// Config holds the engine settings shared by the detector, the HTTP client and the runner
type Config struct {
	Threads         int
	Timeout         time.Duration
	MaxConnsPerHost int
	UserAgent       string
	InsecureTLS     bool
	Blacklist       []string
}

// Vendor identifies one of the supported object-storage vendors
type Vendor int

const (
	Unknown Vendor = iota
	Aliyun
	Tencent
	Huawei
	AWS
)

// Vendors returns every known vendor in canonical order
func Vendors() []Vendor {
	return []Vendor{Aliyun, Tencent, Huawei, AWS}
}

func (v Vendor) String() string {
	switch v {
	case Aliyun:
		return "aliyun"
	case Tencent:
		return "tencent"
	case Huawei:
		return "huawei"
	case AWS:
		return "aws"
	}
	return "unknown"
}

// Known reports whether v is one of the four supported vendors.
func (v Vendor) Known() bool {
	return v >= Aliyun && v <= AWS
}

func (v Vendor) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Vendor) UnmarshalText(b []byte) error {
	*v = ParseVendor(string(b))
	return nil
}

// ParseVendor maps a vendor identifier or product alias (oss, cos, obs, s3)
// to a Vendor. Anything else is Unknown.
func ParseVendor(s string) Vendor {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "aliyun", "alibaba", "oss":
		return Aliyun
	case "tencent", "cos":
		return Tencent
	case "huawei", "obs":
		return Huawei
	case "aws", "amazon", "amazons3", "amazonaws", "s3":
		return AWS
	}
	return Unknown
}

// ParseVendors parses a list of identifiers, dropping the ones that are not recognized.
// The second return value holds the dropped identifiers.
func ParseVendors(ids []string) ([]Vendor, []string) {
	var vendors []Vendor
	var dropped []string
	for _, id := range ids {
		if v := ParseVendor(id); v.Known() {
			vendors = append(vendors, v)
		} else {
			dropped = append(dropped, id)
		}
	}
	return vendors, dropped
}

// FindingType is the kind of misconfiguration a probe detected
type FindingType string

const (
	Traversable    FindingType = "TRAVERSABLE"
	Upload         FindingType = "UPLOAD"
	Delete         FindingType = "DELETE"
	ACLReadable    FindingType = "ACL_READABLE"
	ACLWritable    FindingType = "ACL_WRITABLE"
	PolicyWritable FindingType = "POLICY_WRITABLE"
	TakeoverRisk   FindingType = "TAKEOVER_RISK"
)

// Finding represents one successful probe together with its evidence
type Finding struct {
	Type     FindingType `json:"type"`
	Vendor   Vendor      `json:"vendor"`
	URL      string      `json:"url"`
	Found    bool        `json:"found"`
	Request  string      `json:"request"`
	Response string      `json:"response"`
	Detail   string      `json:"detail"`
}

// Options selects which checks run and, optionally, which vendor modules.
// An empty Vendors list means the vendor is identified from the target.
type Options struct {
	CheckACL    bool     `json:"check_acl"`
	CheckPolicy bool     `json:"check_policy"`
	Vendors     []Vendor `json:"vendors,omitempty"`
}

// DefaultOptions enables every optional check.
func DefaultOptions() Options {
	return Options{CheckACL: true, CheckPolicy: true}
}

// Header is a single header line. Order of a []Header is preserved on the wire
// and in rendered evidence.
type Header struct {
	Name  string
	Value string
}
