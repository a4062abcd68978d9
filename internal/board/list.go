package board

// InsertSorted places msg into a newest-first list. It goes before the first
// entry whose CreatedAt is not after its own, so the latest insertion wins
// ties.
func InsertSorted(list []Message, msg Message) []Message {
	i := 0
	for i < len(list) && list[i].CreatedAt.After(msg.CreatedAt) {
		i++
	}
	list = append(list, Message{})
	copy(list[i+1:], list[i:])
	list[i] = msg
	return list
}

// IndexOfServerID returns the position of the confirmed entry with the given
// server id, or -1.
func IndexOfServerID(list []Message, serverID int64) int {
	for i, m := range list {
		if id, ok := m.ID.ServerID(); ok && id == serverID {
			return i
		}
	}
	return -1
}
