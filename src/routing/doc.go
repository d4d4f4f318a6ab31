// Package routing maps abstract message locations onto concrete next-hop
// members. Resolution is greedy over the node's section knowledge: every hop
// must land in a section whose prefix is a strictly better approximation of
// the destination than the local one, which bounds any route by the name's
// bit length.
package routing
