// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the sync daemon runtime.
//
// It wires local storage, the remote gateway, the sync orchestrator and the
// background workers into a single process lifecycle.
package client
