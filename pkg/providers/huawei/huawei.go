// Package huawei probes Huawei Cloud OBS buckets.
package huawei

import (
	"github.com/valyala/fasthttp"

	"buckettool/pkg/core"
	"buckettool/pkg/net"
	"buckettool/pkg/providers/probe"
)

// TestObject is the object name written by the upload probe.
const TestObject = "testFileByExt.testFileByExt"

// Probes is the OBS check sequence, in execution order.
var Probes = []probe.Probe{
	{
		Type:     core.Upload,
		Method:   fasthttp.MethodPut,
		Endpoint: probe.AtObject(TestObject),
		Body:     "test",
		Match:    probe.Success,
		Detail:   "anonymous PUT upload succeeded",
	},
	{
		// OBS listings carry no reliable root element name, so require an object entry
		Type:     core.Traversable,
		Method:   fasthttp.MethodGet,
		Endpoint: probe.AtRoot,
		Match:    probe.All(probe.Success, probe.HasElements("Name", "Contents")),
		Detail:   "bucket listing is public",
	},
	{
		Type:     core.ACLReadable,
		Method:   fasthttp.MethodGet,
		Endpoint: probe.AtSub("acl"),
		Match:    probe.All(probe.Success, probe.HasElements("Owner", "AccessControlList")),
		Detail:   "bucket ACL is readable",
		Gate:     probe.IfACL,
	},
	{
		Type:     core.ACLWritable,
		Method:   fasthttp.MethodPut,
		Endpoint: probe.AtSub("acl"),
		Headers:  []core.Header{{Name: "x-obs-acl", Value: "public-read-write-delivered"}},
		Match:    probe.Success,
		Detail:   "bucket ACL is writable",
		Gate:     probe.IfACL,
	},
}

// NewProvider returns the OBS probe module.
func NewProvider(client *net.Client) *probe.Module {
	return probe.NewModule(core.Huawei, client, Probes)
}
