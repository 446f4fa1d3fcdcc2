// Package matchers holds the clause matchers that decide whether a
// document satisfies one checklist rule.
package matchers
