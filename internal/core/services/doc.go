// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The evaluation pipeline lives here: classification, citation retrieval
// and clause matching are wired together by EvaluationService, which only
// knows them through their ports.
package services
