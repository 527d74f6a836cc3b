package b0

// Reassembler 分页重组器。按子命令累积分页响应片段，全部页齐备后
// 按页序合并交还。实例归属单个会话任务，由其独占访问，不做并发保护；
// 会话拆除时调用 Discard，部分状态不得跨连接存留。
type Reassembler struct {
	key     string
	entries map[byte]*accumulator
}

type accumulator struct {
	pages map[int][]Chunk // 页索引 -> 该页数据块
	count int             // 期望总页数；0 表示未知
}

func NewReassembler(key string) *Reassembler {
	return &Reassembler{key: key, entries: make(map[byte]*accumulator)}
}

// Key 会话标识
func (r *Reassembler) Key() string { return r.key }

// Pending 仍在缓冲的子命令数
func (r *Reassembler) Pending() int { return len(r.entries) }

// Has 某页是否已缓冲
func (r *Reassembler) Has(sub byte, index int) bool {
	acc := r.entries[sub]
	if acc == nil {
		return false
	}
	_, ok := acc.pages[index]
	return ok
}

// Active 该子命令是否有缓冲中的分页交换
func (r *Reassembler) Active(sub byte) bool {
	return r.entries[sub] != nil
}

// NextIndex 该子命令下一页的推定索引：最高已见索引 +1，无缓冲为 0。
// 页号字节恒为 0xFF 的子命令（如 0x1F）靠它推定页序。
func (r *Reassembler) NextIndex(sub byte) int {
	acc := r.entries[sub]
	if acc == nil {
		return 0
	}
	high := -1
	for idx := range acc.pages {
		if idx > high {
			high = idx
		}
	}
	return high + 1
}

// Feed 记录一页数据。index 为 0 基页索引；count>0 时记录期望总页数；
// final 标记末页并据此推定总页数为 index+1。索引 0 重复到达视为新一轮
// 交换，旧的部分状态被丢弃；重复页覆盖继续，不报错。当 0..count-1 全部
// 在缓冲中时返回按页序合并的数据块并清除该子命令的累积状态。
// count==1 的单页退化情形立即返回。
func (r *Reassembler) Feed(sub byte, index, count int, final bool, chunks []Chunk) ([]Chunk, bool) {
	if index < 0 {
		index = 0
	}
	acc := r.entries[sub]
	if acc == nil {
		acc = &accumulator{pages: make(map[int][]Chunk)}
		r.entries[sub] = acc
	}
	if index == 0 {
		if _, dup := acc.pages[0]; dup {
			acc.pages = make(map[int][]Chunk)
			acc.count = 0
		}
	}
	acc.pages[index] = chunks
	if count > 0 {
		acc.count = count
	}
	if final {
		acc.count = index + 1
	}
	if acc.count == 0 {
		return nil, false
	}
	for i := 0; i < acc.count; i++ {
		if _, ok := acc.pages[i]; !ok {
			return nil, false
		}
	}

	var merged []Chunk
	for i := 0; i < acc.count; i++ {
		merged = mergeChunks(merged, acc.pages[i])
	}
	delete(r.entries, sub)
	return merged, true
}

// Discard 清除全部缓冲
func (r *Reassembler) Discard() {
	r.entries = make(map[byte]*accumulator)
}

// mergeChunks 将一页的数据块并入累积结果：块索引相同则拼接单元并
// 累加长度，否则追加为新块
func mergeChunks(acc, page []Chunk) []Chunk {
	for _, c := range page {
		merged := false
		for i := range acc {
			if acc[i].Index == c.Index {
				acc[i].Units = append(acc[i].Units, c.Units...)
				acc[i].Length += c.Length
				merged = true
				break
			}
		}
		if !merged {
			acc = append(acc, c)
		}
	}
	return acc
}
