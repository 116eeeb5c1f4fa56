// Package proxmox wraps the Proxmox VE HTTP API behind the Provisioner
// interface the reconciler consumes.
//
// The wrapper owns the ambient concerns of talking to the hypervisor:
// token authentication, per-operation timeouts, transient-error retry with
// exponential backoff, task (UPID) polling, and the error taxonomy that
// separates authentication failures, invalid parameters, conflicts, and
// timeouts.
package proxmox
