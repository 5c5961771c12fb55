// Package delegation implements task hand-off between a parent agent and its
// declared subagents: a synchronous single-target transfer and a bounded
// parallel fan-out. Each parent holds one advisory try-lock per transfer
// pattern, so a second transfer of the same pattern while one is in flight is
// answered with a Busy outcome instead of blocking, while the two patterns
// (and different parents) proceed independently. Child failures during a
// fan-out are captured per child and never disturb siblings.
package delegation
