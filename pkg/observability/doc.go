/*
Package observability provides tools for monitoring the workpad engine.

It turns engine lifecycle hooks into Prometheus metrics and structured audit
logs, so hosts can observe which commands run, how often they are no-ops, and
how often they are rejected.
*/
package observability
