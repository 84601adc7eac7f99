package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buckettool/pkg/core"
	"buckettool/pkg/net/nettest"
	"buckettool/pkg/providers/aliyun"
)

const listing = "<ListBucketResult><Name>b</Name><Contents><Key>a</Key></Contents></ListBucketResult>"

func TestDetect_HeaderFallback(t *testing.T) {
	const target = "https://files.example.com/"
	doer := nettest.NewDoer().
		On("HEAD", target, nettest.Response{Status: 403, Headers: [][2]string{{"Server", "AliyunOSS"}}}).
		On("GET", target, nettest.Response{Body: listing})

	findings := NewDetector(doer.Client()).Detect(context.Background(), target, core.DefaultOptions())

	require.Len(t, findings, 1)
	assert.Equal(t, core.Traversable, findings[0].Type)
	assert.Equal(t, core.Aliyun, findings[0].Vendor)
	assert.Equal(t, []string{
		"HEAD " + target,
		"GET " + target,
		"PUT " + target + aliyun.TestObject,
		"GET " + target + "?acl",
		"PUT " + target + "?acl",
		"PUT " + target + "?policy",
		"GET " + target,
	}, doer.URLs())
}

func TestDetect_UnknownVendorProbesNothing(t *testing.T) {
	const target = "https://www.example.com/"
	doer := nettest.NewDoer().On("HEAD", target, nettest.Response{Headers: [][2]string{{"Server", "nginx"}}})

	findings := NewDetector(doer.Client()).Detect(context.Background(), target, core.DefaultOptions())

	assert.NotNil(t, findings)
	assert.Empty(t, findings)
	assert.Equal(t, []string{"HEAD " + target}, doer.URLs())
}

func TestDetect_HostMatchSkipsHead(t *testing.T) {
	const target = "https://b.s3.amazonaws.com/"
	doer := nettest.NewDoer().On("DELETE", target+"testFileByExt.txt", nettest.Response{Status: 204})

	findings := NewDetector(doer.Client()).Detect(context.Background(), target+"?versionId=3", core.Options{})

	require.Len(t, findings, 1)
	assert.Equal(t, core.Delete, findings[0].Type)
	for _, u := range doer.URLs() {
		assert.NotContains(t, u, "HEAD")
		assert.NotContains(t, u, "versionId")
	}
}

func TestDetect_ExplicitVendorOverridesHost(t *testing.T) {
	const target = "https://b.s3.amazonaws.com/"
	doer := nettest.NewDoer()

	findings := NewDetector(doer.Client()).Detect(context.Background(), target,
		core.Options{Vendors: []core.Vendor{core.Aliyun}})

	assert.Empty(t, findings)
	assert.Equal(t, []string{
		"GET " + target,
		"PUT " + target + aliyun.TestObject,
		"GET " + target,
	}, doer.URLs())
}

func TestDetect_ExplicitVendorsInOrder(t *testing.T) {
	const target = "https://shared.example.net/"
	doer := nettest.NewDoer().On("GET", target, nettest.Response{Body: listing})

	findings := NewDetector(doer.Client()).Detect(context.Background(), target, core.Options{
		Vendors: []core.Vendor{core.Tencent, core.Unknown, core.Vendor(42), core.Aliyun},
	})

	require.Len(t, findings, 2)
	assert.Equal(t, core.Tencent, findings[0].Vendor)
	assert.Equal(t, core.Aliyun, findings[1].Vendor)
	for _, f := range findings {
		assert.Equal(t, core.Traversable, f.Type)
		assert.True(t, f.Found)
	}
	// tencent: list, upload; aliyun: list, upload, takeover
	assert.Len(t, doer.Calls(), 5)
}

func TestDetect_Idempotent(t *testing.T) {
	const target = "https://b.obs.cn-north-4.myhuaweicloud.com/"
	doer := nettest.NewDoer().
		On("GET", target, nettest.Response{Body: listing}).
		On("GET", target+"?acl", nettest.Response{Body: "<AccessControlPolicy><Owner><ID>x</ID></Owner><AccessControlList/></AccessControlPolicy>"})
	d := NewDetector(doer.Client())

	first := d.Detect(context.Background(), target, core.DefaultOptions())
	second := d.Detect(context.Background(), target, core.DefaultOptions())

	require.Len(t, first, 2)
	assert.Equal(t, first, second)
}

func TestDetect_CancelledContext(t *testing.T) {
	doer := nettest.NewDoer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	findings := NewDetector(doer.Client()).Detect(ctx, "https://b.s3.amazonaws.com/",
		core.Options{Vendors: []core.Vendor{core.AWS, core.Aliyun}})

	assert.Empty(t, findings)
	assert.Empty(t, doer.Calls())
}

func TestDetector_ProviderTableCoversEveryVendor(t *testing.T) {
	d := NewDetector(nettest.NewDoer().Client())
	for _, v := range core.Vendors() {
		p, ok := d.providers[v]
		require.True(t, ok, v.String())
		assert.Equal(t, v, p.Vendor())
	}
	_, ok := d.providers[core.Unknown]
	assert.False(t, ok)
}
