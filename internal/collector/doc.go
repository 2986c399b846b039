// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

// Package collector gathers monthly tourism indicators per Spanish region
// from three sources: INE (occupancy and employment), TripAdvisor (rankings,
// reviews, facilities), and Exceltur (competitiveness and economic benefit).
//
// The bundled sources synthesize deterministic values from a hash of region
// and month, standing in for the external APIs; real API-backed sources
// implement the same Source interface. The Orchestrator fans out over
// regions and sources, merges partial records per (region, month), and
// emits observation rows ready for the analysis pipeline.
package collector
