// Package aliyun probes Alibaba Cloud OSS buckets.
package aliyun

import (
	"github.com/valyala/fasthttp"

	"buckettool/pkg/core"
	"buckettool/pkg/net"
	"buckettool/pkg/providers/probe"
)

// TestObject is the object name written by the upload probe.
const TestObject = "testFileByExt.testFileByExt"

// policyDocument grants an arbitrary account read/write on every object.
const policyDocument = `{"Version":"1","Statement":[{"Action":["oss:PutObject","oss:GetObject"],"Effect":"Allow","Principal":["1234567890"],"Resource":["acs:oss:*:*/*"]}]}`

// Probes is the OSS check sequence, in execution order.
var Probes = []probe.Probe{
	{
		Type:     core.Traversable,
		Method:   fasthttp.MethodGet,
		Endpoint: probe.AtRoot,
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
		Type:     core.ACLReadable,
		Method:   fasthttp.MethodGet,
		Endpoint: probe.AtQuery("acl"),
		Match:    probe.Success,
		Detail:   "bucket ACL is readable",
		Gate:     probe.IfACL,
	},
	{
		Type:     core.ACLWritable,
		Method:   fasthttp.MethodPut,
		Endpoint: probe.AtQuery("acl"),
		Headers:  []core.Header{{Name: "x-oss-object-acl", Value: "default"}},
		Match:    probe.Success,
		Detail:   "bucket ACL is writable",
		Gate:     probe.IfACL,
	},
	{
		Type:     core.PolicyWritable,
		Method:   fasthttp.MethodPut,
		Endpoint: probe.AtSub("policy"),
		Body:     policyDocument,
		Match:    probe.Success,
		Detail:   "bucket policy is writable",
		Gate:     probe.IfPolicy,
	},
	{
		Type:     core.TakeoverRisk,
		Method:   fasthttp.MethodGet,
		Endpoint: probe.AtRoot,
		Match:    probe.NoSuchBucket,
		Detail:   "bucket does not exist and can be claimed (takeover risk)",
	},
}

// NewProvider returns the OSS probe module.
func NewProvider(client *net.Client) *probe.Module {
	return probe.NewModule(core.Aliyun, client, Probes)
}
