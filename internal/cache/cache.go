package cache

import "context"

var (
	_ ListCache = (*RedisListCache)(nil)
	_ ListCache = (*MemoryListCache)(nil)
	_ ListCache = NopListCache{}
)

// Version is the generation of a resource's cached lists, as seen by a Get.
// Invalidate moves the resource to a new generation, so a Set carrying an older
// Version lands where no reader looks.
type Version struct {
	n     int64
	valid bool
}

// ListCache holds serialized list responses per resource. The variant tells apart
// different query params of the same list. All operations are best-effort:
// failures are logged and reported as a miss.
type ListCache interface {
	Get(ctx context.Context, resource, variant string) ([]byte, Version, bool)
	// Set stores data under the version returned by the Get that missed.
	Set(ctx context.Context, resource, variant string, version Version, data []byte)
	Invalidate(ctx context.Context, resource string)
}

type NopListCache struct{}

func (NopListCache) Get(context.Context, string, string) ([]byte, Version, bool) {
	return nil, Version{}, false
}

func (NopListCache) Set(context.Context, string, string, Version, []byte) {}

func (NopListCache) Invalidate(context.Context, string) {}
