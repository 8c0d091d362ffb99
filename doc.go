// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package corert implements the asynchronous GPU command-submission core
// of an interactive real-time graphics runtime: a render thread that
// exclusively owns a [gpu.Context], named command queues fed by
// per-producer-thread staging storage, a render policy that orders those
// queues within a frame, a sync thread that waits on GPU fences on behalf
// of producers, and an async-resource framework (buffer, texture,
// framebuffer, shader program, primitive stream) whose creation and
// destruction is serialized through the render thread.
//
// The actual GPU API binding, scene graph, renderer passes, windowing, and
// asset systems are external collaborators; this module only specifies
// the [gpu.Context] boundary they implement and the [Graphics] façade they
// drive.
package corert
