/*
Package session implements the per-action concurrency guard: a bound on
how many transactions of one action name may run at once, enforced
in-process via reference-counted local slots and, optionally, across
every host process sharing a coordinator via a DistributedLimiter.
*/
package session
