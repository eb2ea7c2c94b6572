// Package sos implements the coding and reconciliation core of an OGC
// Sensor Observation Service.
//
// # Architecture
//
// The module is organized around three concerns:
//
//	┌─────────────────────────────────────┐
//	│        Codec Registry               │  decoder/encoder lookup by
//	│   (coding, decoder, encoder,        │  namespace, operation and
//	│    codecregistry)                   │  type similarity
//	└─────────────────────────────────────┘
//	           ↓ produces / consumes
//	┌─────────────────────────────────────┐
//	│      Observation Model              │  observations, constellations,
//	│   (om, gml, swe, swecodec)          │  times, data arrays
//	└─────────────────────────────────────┘
//	           ↑ assembled by
//	┌─────────────────────────────────────┐
//	│    Reconciliation Engine            │  row reconstitution, merging,
//	│        (reconcile)                  │  unfolding
//	└─────────────────────────────────────┘
//
// # Packages
//
// Coding:
//   - coding: codec registry, lookup keys, type-similarity scoring,
//     dispatch helpers and the per-call encoding context
//   - decoder: KVP operation decoders and OM 2.0 XML decoding
//   - encoder: GML, OM 2.0 and SWE 2.0 XML encoders
//   - codecregistry: registration of all codecs into one registry
//
// Model:
//   - om: observations, constellations, values and merge semantics
//   - gml: time instants, periods, ISO-8601 parsing and identifiers
//   - swe: data records, data arrays and result templates
//   - swecodec: conversion between observation values and array blocks
//
// Reconciliation:
//   - reconcile: read-path reconstitution of persisted rows, generic
//     observation merging, write-path unfolding of array observations
//
// Infrastructure:
//   - config: JSON-schema validated service settings
//   - errors: coded OWS exceptions and composite reports
//   - logging: structured logging with optional NATS mirroring
//   - metric: Prometheus metrics of the coding and reconcile pipelines
//   - request: decoded operation request types
//   - ogc: shared namespace and operation constants
//
// # Usage
//
// Build a registry and decode a request:
//
//	registry := coding.NewRegistry()
//	codecregistry.Register(registry, "")
//
//	req, err := coding.DecodeOperationRequest(registry,
//	    ogc.ServiceSOS, ogc.Version20, ogc.OperationGetObservation, params)
//
// Reconstitute and encode observations:
//
//	engine := reconcile.NewEngine(settings, metrics, features, templates, logger)
//	observations, err := engine.Reconstitute(ctx, rows)
//	merged := engine.MergeForGenericObservation(observations)
//	fragment, err := coding.EncodeObject(registry, ogc.NamespaceOM, merged[0], nil)
package sos
