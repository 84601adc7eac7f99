package engine

import (
	"context"
	"net/url"
	"strings"

	"buckettool/pkg/core"
	"buckettool/pkg/net"
)

// hostSuffixes maps each vendor to the domain suffixes its bucket endpoints use.
var hostSuffixes = map[core.Vendor][]string{
	core.Aliyun:  {"aliyuncs.com"},
	core.Tencent: {"myqcloud.com", "tencentcos.cn"},
	core.Huawei:  {"myhuaweicloud.com"},
	core.AWS:     {"amazonaws.com", "amazonaws.com.cn"},
}

// serverHeaders maps the Server response header value to its vendor.
var serverHeaders = map[string]core.Vendor{
	"AliyunOSS":   core.Aliyun,
	"tencent-cos": core.Tencent,
	"OBS":         core.Huawei,
	"AmazonS3":    core.AWS,
}

// Identify classifies target by its host name. It never touches the network.
func Identify(target string) core.Vendor {
	u, err := url.Parse(target)
	if err != nil {
		return core.Unknown
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return core.Unknown
	}
	// fixed order so overlapping suffixes resolve deterministically
	for _, v := range core.Vendors() {
		for _, suffix := range hostSuffixes[v] {
			if host == suffix || strings.HasSuffix(host, "."+suffix) {
				return v
			}
		}
	}
	return core.Unknown
}

// IdentifyByProbe sends one HEAD request and classifies target by the
// Server header of the reply. Userinfo in target is never sent. Any failure
// yields core.Unknown.
func IdentifyByProbe(ctx context.Context, client *net.Client, target string) core.Vendor {
	ex, err := client.Head(ctx, withoutUserinfo(target))
	if err != nil {
		return core.Unknown
	}
	if v, ok := serverHeaders[ex.Header("Server")]; ok {
		return v
	}
	return core.Unknown
}

func withoutUserinfo(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.User == nil {
		return target
	}
	u.User = nil
	return u.String()
}
