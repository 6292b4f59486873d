package utils

import (
	"fmt"
	"sort"
)

type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions, [begin, end)
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	if ParallelDegree < 1 {
		panic(fmt.Sprintf("parallel degree must be at least 1, have %d", ParallelDegree))
	}
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

func (pm *PartitionMap) GetBucket(kDim int) (bucketNum, min, max int) {
	_, bucketNum, min, max = pm.getBucketWithTryCount(kDim)
	return
}

func (pm *PartitionMap) getBucketWithTryCount(kDim int) (tryCount, bucketNum, min, max int) {
	if kDim < 0 || kDim >= pm.MaxIndex {
		return 0, -1, 0, 0
	}
	// Initial guess
	bucketNum = int(float64(pm.ParallelDegree*kDim) / float64(pm.MaxIndex))
	for !(pm.Partitions[bucketNum][0] <= kDim && pm.Partitions[bucketNum][1] > kDim) {
		if pm.Partitions[bucketNum][0] > kDim {
			bucketNum--
		} else {
			bucketNum++
		}
		if bucketNum == -1 || bucketNum == pm.ParallelDegree {
			return 0, -1, 0, 0
		}
		tryCount++
	}
	min, max = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketDimension(bn int) (kMax int) {
	if bn == -1 {
		kMax = pm.MaxIndex
		return
	}
	var (
		k1, k2 = pm.GetBucketRange(bn)
	)
	kMax = k2 - k1
	return
}

func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	// This routine splits one dimension into c.ParallelDegree pieces, with a maximum imbalance of one item
	var (
		Npart            = pm.MaxIndex / (pm.ParallelDegree)
		startAdd, endAdd int
		remainder        int
	)
	remainder = pm.MaxIndex % pm.ParallelDegree
	if remainder != 0 { // spread the remainder over the first chunks evenly
		if threadNum+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = threadNum
			endAdd = 1
		}
	}
	bucket[0] = threadNum*Npart + startAdd
	bucket[1] = bucket[0] + Npart + endAdd
	return
}

const NoNeighbor = -1

// Neighbors holds the ranks owning the ranges adjacent to a partition,
// NoNeighbor at either end of the partitioned index space
type Neighbors struct {
	Left, Right int
}

type NeighborTable []Neighbors

// NewNeighborTable derives adjacency from the partition ranges themselves. The
// ranges must tile [0, MaxIndex) exactly, otherwise an error is returned.
func NewNeighborTable(pm *PartitionMap) (nt NeighborTable, err error) {
	var (
		NP    = pm.ParallelDegree
		order = make([]int, NP)
	)
	for n := range order {
		order[n] = n
	}
	// Stable, so empty ranges sharing a start keep their rank order
	sort.SliceStable(order, func(i, j int) bool {
		return pm.Partitions[order[i]][0] < pm.Partitions[order[j]][0]
	})
	var next int
	for _, n := range order {
		kMin, kMax := pm.GetBucketRange(n)
		if kMin != next || kMax < kMin {
			err = fmt.Errorf("partition %d range [%d,%d) does not continue from %d",
				n, kMin, kMax, next)
			return
		}
		next = kMax
	}
	if next != pm.MaxIndex {
		err = fmt.Errorf("partitions end at %d, expected %d", next, pm.MaxIndex)
		return
	}
	nt = make(NeighborTable, NP)
	for i, n := range order {
		nt[n] = Neighbors{Left: NoNeighbor, Right: NoNeighbor}
		if i > 0 {
			nt[n].Left = order[i-1]
		}
		if i < NP-1 {
			nt[n].Right = order[i+1]
		}
	}
	return
}
