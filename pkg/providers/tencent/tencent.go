// Package tencent probes Tencent Cloud COS buckets.
package tencent

import (
	"github.com/valyala/fasthttp"

	"buckettool/pkg/core"
	"buckettool/pkg/net"
	"buckettool/pkg/providers/probe"
)

// TestObject is the object name written by the upload probe.
const TestObject = "testFileByExt.testFileByExt"

// BrowserUA is sent with every COS probe; some COS front-ends reject requests without one.
const BrowserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/109.0.5414.75 Safari/537.36"

var ua = core.Header{Name: "User-Agent", Value: BrowserUA}

// Probes is the COS check sequence, in execution order. ACL checks run first.
var Probes = []probe.Probe{
	{
		Type:     core.ACLWritable,
		Method:   fasthttp.MethodPut,
		Endpoint: probe.AtSub("acl"),
		Headers:  []core.Header{{Name: "x-cos-acl", Value: "public-read-write"}, ua},
		Match:    probe.Success,
		Detail:   "bucket ACL is writable",
		Gate:     probe.IfACL,
	},
	{
		Type:     core.ACLReadable,
		Method:   fasthttp.MethodGet,
		Endpoint: probe.AtSub("acl"),
		Headers:  []core.Header{ua},
		Match:    probe.HasElements("Permission"),
		Detail:   "bucket ACL is readable",
		Gate:     probe.IfACL,
	},
	{
		Type:     core.Traversable,
		Method:   fasthttp.MethodGet,
		Endpoint: probe.AtRoot,
		Headers:  []core.Header{ua},
		Match:    probe.All(probe.Success, probe.HasElements("ListBucketResult", "Name")),
		Detail:   "bucket listing is public",
	},
	{
		Type:     core.Upload,
		Method:   fasthttp.MethodPut,
		Endpoint: probe.AtObject(TestObject),
		Headers:  []core.Header{ua},
		Body:     "test fileUpload",
		Match:    probe.Success,
		Detail:   "anonymous PUT upload succeeded",
	},
}

// NewProvider returns the COS probe module.
func NewProvider(client *net.Client) *probe.Module {
	return probe.NewModule(core.Tencent, client, Probes)
}
