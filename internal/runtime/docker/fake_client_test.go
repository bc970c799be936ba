package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/registry"
	specs "github.com/opencontainers/image-spec/specs-go/v1"
)

type fakeDockerClient struct {
	mu            sync.Mutex
	nextID        int
	pingErr       error
	searchTerms   []string
	searchResults map[string][]registry.SearchResult
	searchErr     error
	listFilters   []string
	localImages   map[string][]image.Summary
	imagePulls    []string
	pullStream    []byte
	pullErr       error
	inspectCalls  []inspectCall
	inspect       map[string]container.InspectResponse
	createCalls   []containerCreateCall
	createErr     error
	startCalls    []string
	startErr      error
	removeCalls   []string
	waitCalls     map[string]waitCall
	waitRequests  []container.WaitCondition
	closed        bool
}

type inspectCall struct {
	id      string
	getSize bool
}

type containerCreateCall struct {
	id         string
	name       string
	config     *container.Config
	hostConfig *container.HostConfig
}

type waitCall struct {
	status *container.WaitResponse
	err    error
	block  bool
}

func newFakeDockerClient() *fakeDockerClient {
	return &fakeDockerClient{
		searchResults: make(map[string][]registry.SearchResult),
		localImages:   make(map[string][]image.Summary),
		inspect:       make(map[string]container.InspectResponse),
		waitCalls:     make(map[string]waitCall),
	}
}

func (f *fakeDockerClient) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeDockerClient) Ping(ctx context.Context) (types.Ping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return types.Ping{APIVersion: "1.45"}, f.pingErr
}

func (f *fakeDockerClient) ImageSearch(ctx context.Context, term string, options registry.SearchOptions) ([]registry.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchTerms = append(f.searchTerms, term)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResults[term], nil
}

func (f *fakeDockerClient) ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	refs := options.Filters.Get("reference")
	if len(refs) != 1 {
		return nil, fmt.Errorf("expected a single reference filter, got %v", refs)
	}
	f.listFilters = append(f.listFilters, refs[0])
	return f.localImages[refs[0]], nil
}

func (f *fakeDockerClient) ImagePull(ctx context.Context, ref string, options image.PullOptions) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imagePulls = append(f.imagePulls, ref)
	if f.pullErr != nil {
		return nil, f.pullErr
	}
	return io.NopCloser(bytes.NewReader(f.pullStream)), nil
}

func (f *fakeDockerClient) ContainerInspectWithRaw(ctx context.Context, containerID string, getSize bool) (container.InspectResponse, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inspectCalls = append(f.inspectCalls, inspectCall{id: containerID, getSize: getSize})
	info, ok := f.inspect[containerID]
	if !ok {
		return container.InspectResponse{}, nil, fmt.Errorf("no such container: %s: %w", containerID, cerrdefs.ErrNotFound)
	}
	return info, nil, nil
}

func (f *fakeDockerClient) ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *specs.Platform, containerName string) (container.CreateResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return container.CreateResponse{}, f.createErr
	}
	id := fmt.Sprintf("helper-%d", f.nextID)
	f.nextID++
	f.createCalls = append(f.createCalls, containerCreateCall{id: id, name: containerName, config: config, hostConfig: hostConfig})
	return container.CreateResponse{ID: id}, nil
}

func (f *fakeDockerClient) ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls = append(f.startCalls, containerID)
	return f.startErr
}

func (f *fakeDockerClient) ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error) {
	statusCh := make(chan container.WaitResponse, 1)
	errCh := make(chan error, 1)

	f.mu.Lock()
	f.waitRequests = append(f.waitRequests, condition)
	call, ok := f.waitCalls[containerID]
	f.mu.Unlock()

	if !ok || call.block {
		return statusCh, errCh
	}
	if call.status != nil {
		statusCh <- *call.status
	}
	if call.err != nil {
		errCh <- call.err
	}
	return statusCh, errCh
}

func (f *fakeDockerClient) ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error {
	f.mu.Lock()
	f.removeCalls = append(f.removeCalls, containerID)
	f.mu.Unlock()
	return nil
}

func (f *fakeDockerClient) setInspectMounts(containerID string, mounts ...container.MountPoint) {
	f.mu.Lock()
	f.inspect[containerID] = container.InspectResponse{
		ContainerJSONBase: &container.ContainerJSONBase{ID: containerID},
		Mounts:            mounts,
	}
	f.mu.Unlock()
}

func (f *fakeDockerClient) setWait(containerID string, call waitCall) {
	f.mu.Lock()
	f.waitCalls[containerID] = call
	f.mu.Unlock()
}
