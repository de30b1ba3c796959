package mesh

// DistanceField returns, for every site, the minimum number of neighbour hops
// to a site marked outside. Outside sites are 0 and sites with no path to one
// are -1.
//
// Relaxation runs over a worklist: a site whose value improves re-queues its
// neighbours, so each site settles without a full sweep per change.
func DistanceField(neighbours [][]int, outside []bool) []int {
	dist := make([]int, len(neighbours))
	queue := make([]int, 0, len(neighbours))
	for i := range dist {
		dist[i] = -1
		if i < len(outside) && outside[i] {
			dist[i] = 0
			queue = append(queue, i)
		}
	}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, n := range neighbours[s] {
			if n < 0 || n >= len(dist) {
				continue
			}
			if d := dist[s] + 1; dist[n] < 0 || d < dist[n] {
				dist[n] = d
				queue = append(queue, n)
			}
		}
	}
	return dist
}
