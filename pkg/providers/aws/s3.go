// Package aws probes Amazon S3 buckets.
package aws

import (
	"github.com/valyala/fasthttp"

	"buckettool/pkg/core"
	"buckettool/pkg/net"
	"buckettool/pkg/providers/probe"
)

// TestObject is written by the upload probe and removed by the delete probe.
const TestObject = "testFileByExt.txt"

// Probes is the S3 check sequence, in execution order.
var Probes = []probe.Probe{
	{
		Type:     core.Traversable,
		Method:   fasthttp.MethodGet,
		Endpoint: probe.AtQuery("list-type=2"),
		Match:    probe.All(probe.Success, probe.HasElements("ListBucketResult", "Name")),
		Detail:   "bucket listing is public",
	},
	{
		Type:     core.Upload,
		Method:   fasthttp.MethodPut,
		Endpoint: probe.AtObject(TestObject),
		Body:     "test fileUpload",
		Match:    probe.Success,
		Detail:   "anonymous PUT upload succeeded",
	},
	{
		Type:     core.Delete,
		Method:   fasthttp.MethodDelete,
		Endpoint: probe.AtObject(TestObject),
		Match:    probe.Success,
		Detail:   "anonymous DELETE succeeded",
	},
	{
		Type:     core.ACLReadable,
		Method:   fasthttp.MethodGet,
		Endpoint: probe.AtQuery("acl"),
		Match:    probe.All(probe.Success, probe.HasElements("AccessControlPolicy")),
		Detail:   "bucket ACL is readable",
		Gate:     probe.IfACL,
	},
	{
		Type:     core.ACLWritable,
		Method:   fasthttp.MethodPut,
		Endpoint: probe.AtQuery("acl"),
		Headers:  []core.Header{{Name: "x-amz-acl", Value: "public-read-write"}},
		Match:    probe.Success,
		Detail:   "bucket ACL is writable",
		Gate:     probe.IfACL,
	},
	{
		Type:     core.TakeoverRisk,
		Method:   fasthttp.MethodGet,
		Endpoint: probe.AtRoot,
		Match:    probe.NoSuchBucket,
		Detail:   "bucket does not exist and can be claimed (takeover risk)",
	},
}

// NewProvider returns the S3 probe module.
func NewProvider(client *net.Client) *probe.Module {
	return probe.NewModule(core.AWS, client, Probes)
}
