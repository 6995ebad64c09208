package memstore

// rebuild refits userID's index over every document in ul. The caller holds
// ul.mu for writing. Below the minimum document count, or when the fit or the
// store load fails, the previous index is left in place.
func (s *Store) rebuild(userID string, ul *userLog) {
	if len(ul.docs) < s.opts.MinDocuments {
		return
	}
	corpus := make([]string, len(ul.docs))
	positions := make([]int, len(ul.docs))
	for i, d := range ul.docs {
		corpus[i] = d.Text
		positions[i] = i
	}

	vz := s.opts.NewVectorizer()
	vectors, err := vz.FitTransform(corpus)
	if err != nil {
		s.log.Debug("index rebuild abandoned", "user_id", userID, "documents", len(corpus), "error", err)
		return
	}
	st := s.opts.NewStorage()
	if err := st.Init(vz.Dimension()); err != nil {
		s.log.Warn("index init failed", "user_id", userID, "error", err)
		return
	}
	if err := st.Upsert(positions, vectors); err != nil {
		s.log.Warn("index load failed", "user_id", userID, "error", err)
		return
	}
	ul.index = &userIndex{vectorizer: vz, storage: st, size: len(corpus)}
	s.log.Debug("index rebuilt", "user_id", userID, "documents", len(corpus), "terms", vz.Dimension())
}
