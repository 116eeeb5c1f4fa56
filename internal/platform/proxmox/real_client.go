package proxmox

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/proxfleet/proxfleet/internal/config"
	"github.com/proxfleet/proxfleet/internal/util/retry"
)

// RealClient implements Provisioner against the Proxmox VE HTTP API.
type RealClient struct {
	baseURL    string
	node       string
	authHeader string
	timeouts   *config.Timeouts
	httpClient *http.Client
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithTimeouts sets custom timeouts for the client.
func WithTimeouts(t *config.Timeouts) ClientOption {
	return func(c *RealClient) {
		c.timeouts = t
	}
}

// WithHTTPClient sets a custom HTTP client for API requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *RealClient) {
		c.httpClient = hc
	}
}

// WithInsecureTLS disables certificate verification. Proxmox ships with a
// self-signed certificate, so homelab endpoints commonly need this.
func WithInsecureTLS() ClientOption {
	return func(c *RealClient) {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402
		c.httpClient = &http.Client{Transport: transport}
	}
}

// NewRealClient creates a client for the given API endpoint and node. The
// token secret is held only in the prebuilt Authorization header and never
// appears in errors or logs.
func NewRealClient(endpoint, node, tokenID string, tokenSecret config.Secret, opts ...ClientOption) *RealClient {
	c := &RealClient{
		baseURL:    strings.TrimSuffix(endpoint, "/") + "/api2/json",
		node:       node,
		authHeader: fmt.Sprintf("PVEAPIToken=%s=%s", tokenID, tokenSecret.Reveal()),
		timeouts:   config.LoadTimeouts(),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiResponse is the envelope every Proxmox endpoint wraps its payload in.
type apiResponse struct {
	Data json.RawMessage `json:"data"`
}

type apiErrorBody struct {
	Errors map[string]string `json:"errors"`
}

// vmStatus is the wire shape of both the qemu list entries and the
// status/current payload. Memory and disk come back in bytes.
type vmStatus struct {
	VMID    json.Number `json:"vmid"`
	Name    string      `json:"name"`
	Status  string      `json:"status"`
	CPUs    int         `json:"cpus"`
	MaxMem  int64       `json:"maxmem"`
	MaxDisk int64       `json:"maxdisk"`
	Tags    string      `json:"tags"`
}

func (s vmStatus) toVM(node string) VM {
	vmid, _ := strconv.Atoi(s.VMID.String())
	return VM{
		VMID:     vmid,
		Name:     s.Name,
		Node:     node,
		Status:   s.Status,
		Cores:    s.CPUs,
		MemoryMB: int(s.MaxMem / (1024 * 1024)),
		DiskGB:   int(s.MaxDisk / (1 << 30)),
		Tags:     s.Tags,
	}
}

// Version returns the Proxmox VE version string.
func (c *RealClient) Version(ctx context.Context) (string, error) {
	var data struct {
		Version string `json:"version"`
	}
	if err := c.request(ctx, http.MethodGet, "/version", nil, &data); err != nil {
		return "", err
	}
	return data.Version, nil
}

// ListVMs returns every VM on the configured node, sorted by VMID.
func (c *RealClient) ListVMs(ctx context.Context) ([]VM, error) {
	var data []vmStatus
	path := fmt.Sprintf("/nodes/%s/qemu", c.node)
	if err := c.request(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	vms := make([]VM, 0, len(data))
	for _, s := range data {
		vms = append(vms, s.toVM(c.node))
	}
	sort.Slice(vms, func(i, j int) bool { return vms[i].VMID < vms[j].VMID })
	return vms, nil
}

// GetVM returns the VM with the given VMID, or nil if it does not exist.
func (c *RealClient) GetVM(ctx context.Context, vmid int) (*VM, error) {
	var data vmStatus
	path := fmt.Sprintf("/nodes/%s/qemu/%d/status/current", c.node, vmid)
	err := c.request(ctx, http.MethodGet, path, nil, &data)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	vm := data.toVM(c.node)
	if vm.VMID == 0 {
		vm.VMID = vmid
	}
	return &vm, nil
}

// CloneVM clones a template and waits for the clone task to finish, bounded
// by the create timeout.
func (c *RealClient) CloneVM(ctx context.Context, opts CloneOpts) error {
	return c.boundedOp(ctx, "create", c.timeouts.Create, func(ctx context.Context) error {
		form := url.Values{}
		form.Set("newid", strconv.Itoa(opts.VMID))
		form.Set("name", opts.Name)
		if opts.Full {
			form.Set("full", "1")
		}
		if opts.Storage != "" {
			form.Set("storage", opts.Storage)
		}
		path := fmt.Sprintf("/nodes/%s/qemu/%d/clone", c.node, opts.TemplateVMID)

		var upid string
		if err := c.request(ctx, http.MethodPost, path, form, &upid); err != nil {
			return fmt.Errorf("cloning template %d to vm %d: %w", opts.TemplateVMID, opts.VMID, err)
		}
		return c.waitTask(ctx, upid)
	})
}

// ConfigureVM applies the given attributes to an existing VM, bounded by the
// update timeout.
func (c *RealClient) ConfigureVM(ctx context.Context, vmid int, opts ConfigOpts) error {
	return c.boundedOp(ctx, "update", c.timeouts.Update, func(ctx context.Context) error {
		form := url.Values{}
		if opts.Cores > 0 {
			form.Set("cores", strconv.Itoa(opts.Cores))
		}
		if opts.MemoryMB > 0 {
			form.Set("memory", strconv.Itoa(opts.MemoryMB))
		}
		if opts.Net0 != "" {
			form.Set("net0", opts.Net0)
		}
		if opts.IPConfig0 != "" {
			form.Set("ipconfig0", opts.IPConfig0)
		}
		if opts.CIUser != "" {
			form.Set("ciuser", opts.CIUser)
		}
		if opts.SSHKeys != "" {
			// The config endpoint rejects plain form-encoded key material;
			// it expects the value path-escaped before form encoding.
			form.Set("sshkeys", url.PathEscape(opts.SSHKeys))
		}
		if opts.Tags != "" {
			form.Set("tags", opts.Tags)
		}
		path := fmt.Sprintf("/nodes/%s/qemu/%d/config", c.node, vmid)
		if err := c.request(ctx, http.MethodPost, path, form, nil); err != nil {
			return fmt.Errorf("configuring vm %d: %w", vmid, err)
		}
		return nil
	})
}

// ResizeDisk grows the VM's boot disk to the given size, bounded by the
// update timeout. Proxmox rejects shrinks server-side.
func (c *RealClient) ResizeDisk(ctx context.Context, vmid, sizeGB int) error {
	return c.boundedOp(ctx, "update", c.timeouts.Update, func(ctx context.Context) error {
		form := url.Values{}
		form.Set("disk", "scsi0")
		form.Set("size", fmt.Sprintf("%dG", sizeGB))
		path := fmt.Sprintf("/nodes/%s/qemu/%d/resize", c.node, vmid)
		if err := c.request(ctx, http.MethodPut, path, form, nil); err != nil {
			return fmt.Errorf("resizing vm %d disk to %dG: %w", vmid, sizeGB, err)
		}
		return nil
	})
}

// StartVM powers the VM on and waits for the start task. Starting a running
// VM is not an error.
func (c *RealClient) StartVM(ctx context.Context, vmid int) error {
	return c.boundedOp(ctx, "create", c.timeouts.Create, func(ctx context.Context) error {
		path := fmt.Sprintf("/nodes/%s/qemu/%d/status/start", c.node, vmid)
		var upid string
		err := c.request(ctx, http.MethodPost, path, url.Values{}, &upid)
		if err != nil {
			if isAlreadyInState(err, "running") {
				return nil
			}
			return fmt.Errorf("starting vm %d: %w", vmid, err)
		}
		return c.waitTask(ctx, upid)
	})
}

// StopVM powers the VM off and waits for it to stop, bounded by the delete
// timeout. Stopping a stopped VM is not an error.
func (c *RealClient) StopVM(ctx context.Context, vmid int) error {
	return c.boundedOp(ctx, "delete", c.timeouts.Delete, func(ctx context.Context) error {
		path := fmt.Sprintf("/nodes/%s/qemu/%d/status/stop", c.node, vmid)
		var upid string
		err := c.request(ctx, http.MethodPost, path, url.Values{}, &upid)
		if err != nil {
			if isAlreadyInState(err, "stopped") {
				return nil
			}
			return fmt.Errorf("stopping vm %d: %w", vmid, err)
		}
		return c.waitTask(ctx, upid)
	})
}

// DeleteVM removes the VM and its disks. Deleting an absent VM is not an
// error, which makes destroy retries idempotent.
func (c *RealClient) DeleteVM(ctx context.Context, vmid int) error {
	return c.boundedOp(ctx, "delete", c.timeouts.Delete, func(ctx context.Context) error {
		path := fmt.Sprintf("/nodes/%s/qemu/%d?purge=1&destroy-unreferenced-disks=1", c.node, vmid)
		var upid string
		err := c.request(ctx, http.MethodDelete, path, nil, &upid)
		if err != nil {
			if IsNotFound(err) {
				return nil
			}
			return fmt.Errorf("deleting vm %d: %w", vmid, err)
		}
		return c.waitTask(ctx, upid)
	})
}

// StorageExists reports whether the named storage exists on the node.
func (c *RealClient) StorageExists(ctx context.Context, storage string) (bool, error) {
	var data []struct {
		Storage string `json:"storage"`
	}
	path := fmt.Sprintf("/nodes/%s/storage", c.node)
	if err := c.request(ctx, http.MethodGet, path, nil, &data); err != nil {
		return false, err
	}
	for _, s := range data {
		if s.Storage == storage {
			return true, nil
		}
	}
	return false, nil
}

// boundedOp runs fn under the per-operation timeout. A deadline that fires
// from this bound is reported as a TimeoutError; cancellation of the parent
// context passes through untouched.
func (c *RealClient) boundedOp(ctx context.Context, op string, timeout time.Duration, fn func(context.Context) error) error {
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := fn(opCtx)
	if err != nil && opCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		return &TimeoutError{Op: op, Timeout: timeout, Err: err}
	}
	return err
}

// waitTask polls the task status endpoint until the task stops, then checks
// its exit status.
func (c *RealClient) waitTask(ctx context.Context, upid string) error {
	if upid == "" {
		return nil
	}
	path := fmt.Sprintf("/nodes/%s/tasks/%s/status", c.node, url.PathEscape(upid))

	ticker := time.NewTicker(c.timeouts.TaskPoll)
	defer ticker.Stop()

	for {
		var data struct {
			Status     string `json:"status"`
			ExitStatus string `json:"exitstatus"`
		}
		if err := c.request(ctx, http.MethodGet, path, nil, &data); err != nil {
			return fmt.Errorf("polling task %s: %w", upid, err)
		}
		if data.Status == "stopped" {
			if data.ExitStatus != "OK" {
				return &TaskError{UPID: upid, ExitStatus: data.ExitStatus}
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// request performs one API call with transient-failure retry and decodes the
// data envelope into out when out is non-nil.
func (c *RealClient) request(ctx context.Context, method, path string, form url.Values, out any) error {
	return retry.Do(ctx, func() error {
		err := c.exchange(ctx, method, path, form, out)
		if err != nil && !IsTransient(err) {
			return retry.Fatal(err)
		}
		return err
	},
		retry.WithMaxAttempts(c.timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(c.timeouts.RetryInitialDelay),
	)
}

func (c *RealClient) exchange(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.authHeader)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Status, raw)}
	}
	if out == nil {
		return nil
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decoding response for %s %s: %w", method, path, err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decoding response for %s %s: %w", method, path, err)
	}
	return nil
}

// errorMessage extracts a readable message from an error response. Proxmox
// puts the summary in the status line and parameter detail in an errors map.
func errorMessage(status string, raw []byte) string {
	msg := status
	if i := strings.IndexByte(msg, ' '); i >= 0 {
		msg = strings.TrimSpace(msg[i:])
	}

	var body apiErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && len(body.Errors) > 0 {
		keys := make([]string, 0, len(body.Errors))
		for k := range body.Errors {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, strings.TrimSpace(body.Errors[k])))
		}
		return msg + " (" + strings.Join(parts, "; ") + ")"
	}
	return msg
}

func isAlreadyInState(err error, state string) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "already "+state)
}
